package repository

// Field maps an API field name to its storage names.
type Field struct {
	Column string // relational column
	BSON   string // document key
	Filter bool
	Sort   bool
	Fold   bool // filter values are lowercased, matching how the field is stored
}

// Schema lists the queryable fields of one collection.
type Schema struct {
	Fields      map[string]Field
	Search      []string // API names matched by ListQuery.Search
	DefaultSort string
	DefaultDesc bool
}

func field(column, bson string, filter, sort bool) Field {
	return Field{Column: column, BSON: bson, Filter: filter, Sort: sort}
}

// folded marks a field stored lowercased, such as an email address.
func folded(f Field) Field {
	f.Fold = true
	return f
}

var (
	idField        = field("id", "_id", false, false)
	createdAtField = field("created_at", "createdAt", false, true)
)

var MemberSchema = Schema{
	Fields: map[string]Field{
		"id":             idField,
		"name":           field("name", "name", false, true),
		"email":          folded(field("email", "email", true, false)),
		"phone":          field("phone", "phone", true, false),
		"status":         field("status", "status", true, false),
		"membershipType": field("membership_type", "membershipType", true, false),
		"trainerId":      field("assigned_trainer", "assignedTrainer", true, false),
		"createdAt":      createdAtField,
		"expiryDate":     field("expiry_date", "expiryDate", false, true),
		"totalVisits":    field("total_visits", "totalVisits", false, true),
		"lastVisit":      field("last_visit", "lastVisit", false, true),
	},
	Search:      []string{"name", "email", "phone"},
	DefaultSort: "name",
}

var InvoiceSchema = Schema{
	Fields: map[string]Field{
		"id":         field("id", "_id", false, true),
		"memberId":   field("member_id", "memberId", true, false),
		"memberName": field("member_name", "memberName", false, true),
		"status":     field("status", "status", true, false),
		"createdAt":  createdAtField,
		"dueDate":    field("due_date", "dueDate", false, true),
		"total":      field("total", "total", false, true),
	},
	Search:      []string{"id", "memberName"},
	DefaultSort: "createdAt",
	DefaultDesc: true,
}

var TrainerSchema = Schema{
	Fields: map[string]Field{
		"id":             idField,
		"name":           field("name", "name", false, true),
		"email":          field("email", "email", false, false),
		"phone":          field("phone", "phone", false, false),
		"status":         field("status", "status", true, false),
		"specialization": field("specialization", "specialization", true, true),
		"totalSessions":  field("total_sessions", "totalSessions", false, true),
		"createdAt":      createdAtField,
	},
	Search:      []string{"name", "email", "phone"},
	DefaultSort: "name",
}

var VisitorSchema = Schema{
	Fields: map[string]Field{
		"id":          idField,
		"name":        field("name", "name", false, true),
		"email":       field("email", "email", false, false),
		"phone":       field("phone", "phone", false, false),
		"status":      field("status", "status", true, false),
		"purpose":     field("purpose", "purpose", true, false),
		"checkInTime": field("check_in_time", "checkInTime", false, true),
		"createdAt":   createdAtField,
	},
	Search:      []string{"name", "email", "phone"},
	DefaultSort: "checkInTime",
	DefaultDesc: true,
}

var FollowUpSchema = Schema{
	Fields: map[string]Field{
		"id":          idField,
		"memberId":    field("member_id", "memberId", true, false),
		"visitorId":   field("visitor_id", "visitorId", true, false),
		"subjectName": field("subject_name", "subjectName", false, true),
		"status":      field("status", "status", true, false),
		"type":        field("type", "type", true, false),
		"priority":    field("priority", "priority", true, false),
		"notes":       field("notes", "notes", false, false),
		"dueDate":     field("due_date", "dueDate", false, true),
		"createdAt":   createdAtField,
	},
	Search:      []string{"subjectName", "notes"},
	DefaultSort: "dueDate",
}

var SessionSchema = Schema{
	Fields: map[string]Field{
		"id":          idField,
		"trainerId":   field("trainer_id", "trainerId", true, false),
		"trainerName": field("trainer_name", "trainerName", false, false),
		"memberId":    field("member_id", "memberId", true, false),
		"memberName":  field("member_name", "memberName", false, false),
		"status":      field("status", "status", true, false),
		"type":        field("type", "type", true, false),
		"startTime":   field("start_time", "startTime", false, true),
		"createdAt":   createdAtField,
	},
	Search:      []string{"trainerName", "memberName"},
	DefaultSort: "startTime",
	DefaultDesc: true,
}

var ActivitySchema = Schema{
	Fields: map[string]Field{
		"id":          idField,
		"type":        field("type", "type", true, false),
		"memberId":    field("member_id", "memberId", true, false),
		"invoiceId":   field("invoice_id", "invoiceId", true, false),
		"action":      field("action", "action", false, false),
		"subjectName": field("subject_name", "subjectName", false, false),
		"timestamp":   field("timestamp", "timestamp", false, true),
	},
	Search:      []string{"action", "subjectName"},
	DefaultSort: "timestamp",
	DefaultDesc: true,
}

var CheckInSchema = Schema{
	Fields: map[string]Field{
		"id":         idField,
		"memberId":   field("member_id", "memberId", true, false),
		"memberName": field("member_name", "memberName", false, false),
		"date":       field("date", "date", true, true),
		"timestamp":  field("timestamp", "timestamp", false, true),
	},
	Search:      []string{"memberName"},
	DefaultSort: "timestamp",
	DefaultDesc: true,
}

var UserSchema = Schema{
	Fields: map[string]Field{
		"id":        idField,
		"username":  field("username", "username", true, true),
		"createdAt": createdAtField,
	},
	DefaultSort: "username",
}
