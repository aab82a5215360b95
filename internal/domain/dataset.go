package domain

// Collection names as exposed by the bulk-read endpoints.
const (
	CollectionMembers    = "members"
	CollectionTrainers   = "trainers"
	CollectionVisitors   = "visitors"
	CollectionInvoices   = "invoices"
	CollectionFollowUps  = "followups"
	CollectionActivities = "activities"
	CollectionCheckIns   = "checkins"
	CollectionSessions   = "sessions"
)

// ReplicatedCollections are the collections mirrored by the sync client, in pull order.
var ReplicatedCollections = []string{
	CollectionMembers,
	CollectionTrainers,
	CollectionVisitors,
	CollectionInvoices,
	CollectionFollowUps,
	CollectionActivities,
	CollectionCheckIns,
}

// Dataset is every replicated collection at once.
type Dataset struct {
	Members    []Member   `json:"members"`
	Trainers   []Trainer  `json:"trainers"`
	Visitors   []Visitor  `json:"visitors"`
	Invoices   []Invoice  `json:"invoices"`
	FollowUps  []FollowUp `json:"followUps"`
	Activities []Activity `json:"activities"`
	CheckIns   []CheckIn  `json:"checkIns"`
}

// Normalize replaces missing collections with empty ones.
func (d *Dataset) Normalize() {
	if d.Members == nil {
		d.Members = []Member{}
	}
	if d.Trainers == nil {
		d.Trainers = []Trainer{}
	}
	if d.Visitors == nil {
		d.Visitors = []Visitor{}
	}
	if d.Invoices == nil {
		d.Invoices = []Invoice{}
	}
	if d.FollowUps == nil {
		d.FollowUps = []FollowUp{}
	}
	if d.Activities == nil {
		d.Activities = []Activity{}
	}
	if d.CheckIns == nil {
		d.CheckIns = []CheckIn{}
	}
}

// CoreEmpty reports whether members, trainers, visitors, invoices, follow-ups
// and activities are all empty. Check-ins are not consulted.
func (d Dataset) CoreEmpty() bool {
	return len(d.Members) == 0 && len(d.Trainers) == 0 && len(d.Visitors) == 0 &&
		len(d.Invoices) == 0 && len(d.FollowUps) == 0 && len(d.Activities) == 0
}

// Empty reports whether every collection is empty.
func (d Dataset) Empty() bool {
	return d.CoreEmpty() && len(d.CheckIns) == 0
}
