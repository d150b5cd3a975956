// Package api provides the HTTP clients for the JobHub server: the job API
// and the first-party session endpoints. Types mirror the server's JSON.
package api

// Categories lists the job categories the server accepts.
var Categories = []string{
	"Web Development",
	"Digital Marketing",
	"Graphics Design",
	"Content Writing",
	"Virtual Assistant",
}

// SortOrder selects the server-side ordering of GET /jobs.
type SortOrder string

const (
	SortDefault SortOrder = ""
	SortAsc     SortOrder = "asc"
	SortDesc    SortOrder = "desc"
)

// Next cycles default → asc → desc → default.
func (s SortOrder) Next() SortOrder {
	switch s {
	case SortDefault:
		return SortAsc
	case SortAsc:
		return SortDesc
	default:
		return SortDefault
	}
}

func (s SortOrder) String() string {
	if s == SortDefault {
		return "default"
	}
	return string(s)
}

// Job is a posted job.
type Job struct {
	ID            string  `json:"_id,omitempty"`
	JobTitle      string  `json:"jobTitle"`
	PostedBy      string  `json:"postedBy"`
	JobCategory   string  `json:"jobCategory"`
	Description   string  `json:"description"`
	CoverImage    string  `json:"coverImage"`
	EmployerEmail string  `json:"employerEmail"`
	MinPrice      float64 `json:"minPrice"`
	MaxPrice      float64 `json:"maxPrice"`
	Deadline      string  `json:"deadline"`
	PostingDate   string  `json:"postingDate,omitempty"`
}

// TaskStatus values as stored by the server.
const TaskPending = "pending"

// AcceptedTask links a job to the user who took it.
type AcceptedTask struct {
	ID             string `json:"_id,omitempty"`
	JobID          string `json:"jobId"`
	JobTitle       string `json:"jobTitle"`
	JobCategory    string `json:"jobCategory"`
	EmployerEmail  string `json:"employerEmail"`
	JobTakerEmail  string `json:"jobTakerEmail"`
	JobTakerName   string `json:"jobTakerName"`
	Status         string `json:"status"`
	AcceptanceDate string `json:"acceptanceDate"`
}

// MessageAlreadyAccepted is returned instead of an insertedId when the taker
// already holds the task.
const MessageAlreadyAccepted = "Already accepted"

type InsertResult struct {
	InsertedID string `json:"insertedId,omitempty"`
	Message    string `json:"message,omitempty"`
}

// Inserted reports whether the server created a document.
func (r InsertResult) Inserted() bool { return r.InsertedID != "" }

// AlreadyAccepted reports the server's duplicate-acceptance answer.
func (r InsertResult) AlreadyAccepted() bool { return r.Message == MessageAlreadyAccepted }

type UpdateResult struct {
	MatchedCount  int `json:"matchedCount,omitempty"`
	ModifiedCount int `json:"modifiedCount"`
}

type DeleteResult struct {
	DeletedCount int `json:"deletedCount"`
}
