package domain

import (
	"strings"
	"time"
)

const (
	FieldTitle    = "title"
	FieldFromDate = "from_date"
	FieldToDate   = "to_date"
	FieldSchool   = "school"
	FieldMajor    = "major"
	FieldPosition = "position"
	FieldWhenDate = "when_date"
	FieldUserID   = "user_id"
)

// Record is implemented (on the pointer) by every profile sub-resource owned by
// a user: projects, education entries and certificates.
type Record interface {
	OwnerID() string
	Assign(id, userID string, now time.Time)
	// Apply copies the changeset onto the record in memory. Unknown fields
	// and values of the wrong type are ignored.
	Apply(changes Changeset)
	Validate() error
}

// Project is a portfolio project. UserID references the owning user.
type Project struct {
	ID          string    `json:"id" bson:"_id"`
	UserID      string    `json:"user_id" bson:"user_id"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	FromDate    time.Time `json:"from_date" bson:"from_date"`
	ToDate      time.Time `json:"to_date" bson:"to_date"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

func (p *Project) OwnerID() string { return p.UserID }

func (p *Project) Assign(id, userID string, now time.Time) {
	p.ID, p.UserID = id, userID
	p.CreatedAt, p.UpdatedAt = now, now
}

func (p *Project) Apply(changes Changeset) {
	for _, f := range changes {
		switch f.Name {
		case FieldTitle:
			setString(&p.Title, f.Value)
		case FieldDescription:
			setString(&p.Description, f.Value)
		case FieldFromDate:
			setTime(&p.FromDate, f.Value)
		case FieldToDate:
			setTime(&p.ToDate, f.Value)
		}
	}
}

func (p *Project) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return Invalid("title is required")
	}
	if !p.FromDate.IsZero() && !p.ToDate.IsZero() && p.ToDate.Before(p.FromDate) {
		return Invalid("to_date must not be before from_date")
	}
	return nil
}

// Education is a school record. Position holds the degree status, e.g.
// "attending" or "graduated".
type Education struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	School    string    `json:"school" bson:"school"`
	Major     string    `json:"major" bson:"major"`
	Position  string    `json:"position" bson:"position"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

func (e *Education) OwnerID() string { return e.UserID }

func (e *Education) Assign(id, userID string, now time.Time) {
	e.ID, e.UserID = id, userID
	e.CreatedAt, e.UpdatedAt = now, now
}

func (e *Education) Apply(changes Changeset) {
	for _, f := range changes {
		switch f.Name {
		case FieldSchool:
			setString(&e.School, f.Value)
		case FieldMajor:
			setString(&e.Major, f.Value)
		case FieldPosition:
			setString(&e.Position, f.Value)
		}
	}
}

func (e *Education) Validate() error {
	if strings.TrimSpace(e.School) == "" {
		return Invalid("school is required")
	}
	if strings.TrimSpace(e.Major) == "" {
		return Invalid("major is required")
	}
	return nil
}

type Certificate struct {
	ID          string    `json:"id" bson:"_id"`
	UserID      string    `json:"user_id" bson:"user_id"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	WhenDate    time.Time `json:"when_date" bson:"when_date"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

func (c *Certificate) OwnerID() string { return c.UserID }

func (c *Certificate) Assign(id, userID string, now time.Time) {
	c.ID, c.UserID = id, userID
	c.CreatedAt, c.UpdatedAt = now, now
}

func (c *Certificate) Apply(changes Changeset) {
	for _, f := range changes {
		switch f.Name {
		case FieldTitle:
			setString(&c.Title, f.Value)
		case FieldDescription:
			setString(&c.Description, f.Value)
		case FieldWhenDate:
			setTime(&c.WhenDate, f.Value)
		}
	}
}

func (c *Certificate) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return Invalid("title is required")
	}
	return nil
}

func setString(dst *string, v any) {
	if s, ok := v.(string); ok {
		*dst = s
	}
}

func setTime(dst *time.Time, v any) {
	if t, ok := v.(time.Time); ok {
		*dst = t
	}
}
