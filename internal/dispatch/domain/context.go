package domain

import "time"

// Context is the persisted conversational state for one requestId.
// The session store exclusively owns Context values; everything handed out
// crosses the boundary as a deep copy so stages can only read and append
// through the store, never replace history.
type Context struct {
	RequestID    string        `json:"requestId"`
	RawHistory   []Message     `json:"rawHistory"`
	Entities     IntentFacts   `json:"entities"`
	Steps        []StageRecord `json:"steps"`
	Status       Status        `json:"status"`
	ErrorMessage *string       `json:"errorMessage,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// NewContext creates a context for the first message of a request.
func NewContext(requestID string, initial Message) *Context {
	now := time.Now()
	return &Context{
		RequestID:  requestID,
		RawHistory: []Message{initial},
		Entities:   NewIntentFacts(),
		Status:     StatusInitializing,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Clone returns a deep copy of the context.
func (c *Context) Clone() *Context {
	if c == nil {
		return nil
	}
	out := *c
	out.RawHistory = make([]Message, len(c.RawHistory))
	copy(out.RawHistory, c.RawHistory)
	out.Steps = make([]StageRecord, len(c.Steps))
	copy(out.Steps, c.Steps)
	out.Entities = c.Entities.Clone()
	if c.ErrorMessage != nil {
		msg := *c.ErrorMessage
		out.ErrorMessage = &msg
	}
	return &out
}

// LatestStep returns the most recent stage record for the given action type,
// or nil when the stage never ran.
func (c *Context) LatestStep(action StageID) *StageRecord {
	for i := len(c.Steps) - 1; i >= 0; i-- {
		if c.Steps[i].ActionType == action {
			rec := c.Steps[i]
			return &rec
		}
	}
	return nil
}

// CompletedSteps counts stage records with completed status.
func (c *Context) CompletedSteps() int {
	n := 0
	for _, s := range c.Steps {
		if s.Status == StageRecordCompleted {
			n++
		}
	}
	return n
}

// Report summarizes the context for status queries.
func (c *Context) Report() StatusReport {
	return StatusReport{
		RequestID:      c.RequestID,
		Status:         c.Status,
		StepsCompleted: c.CompletedSteps(),
		LastError:      c.ErrorMessage,
	}
}
