package domain

import "time"

// Field is a single field assignment in a selective update.
type Field struct {
	Name  string
	Value any
}

// Changeset lists the fields a selective update writes, in declaration order.
// Fields that were not set by the caller never appear in it.
type Changeset []Field

func (cs Changeset) Empty() bool { return len(cs) == 0 }

// Has reports whether the changeset writes the named field.
func (cs Changeset) Has(name string) bool {
	for _, f := range cs {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Patch is implemented by every partial update payload.
type Patch interface {
	Changes() Changeset
}

func appendSet[T any](cs Changeset, name string, o Optional[T]) Changeset {
	if v, ok := o.Get(); ok {
		return append(cs, Field{Name: name, Value: v})
	}
	return cs
}

// UserPatch is a partial update of a user's public profile fields. Credentials
// and the profile image have their own operations.
type UserPatch struct {
	Name        Optional[string] `json:"name"`
	Email       Optional[string] `json:"email"`
	Description Optional[string] `json:"description"`
}

func (p UserPatch) Changes() Changeset {
	var cs Changeset
	cs = appendSet(cs, FieldName, p.Name)
	cs = appendSet(cs, FieldEmail, p.Email)
	cs = appendSet(cs, FieldDescription, p.Description)
	return cs
}

type ProjectPatch struct {
	Title       Optional[string]    `json:"title"`
	Description Optional[string]    `json:"description"`
	FromDate    Optional[time.Time] `json:"from_date"`
	ToDate      Optional[time.Time] `json:"to_date"`
}

func (p ProjectPatch) Changes() Changeset {
	var cs Changeset
	cs = appendSet(cs, FieldTitle, p.Title)
	cs = appendSet(cs, FieldDescription, p.Description)
	cs = appendSet(cs, FieldFromDate, p.FromDate)
	cs = appendSet(cs, FieldToDate, p.ToDate)
	return cs
}

type EducationPatch struct {
	School   Optional[string] `json:"school"`
	Major    Optional[string] `json:"major"`
	Position Optional[string] `json:"position"`
}

func (p EducationPatch) Changes() Changeset {
	var cs Changeset
	cs = appendSet(cs, FieldSchool, p.School)
	cs = appendSet(cs, FieldMajor, p.Major)
	cs = appendSet(cs, FieldPosition, p.Position)
	return cs
}

type CertificatePatch struct {
	Title       Optional[string]    `json:"title"`
	Description Optional[string]    `json:"description"`
	WhenDate    Optional[time.Time] `json:"when_date"`
}

func (p CertificatePatch) Changes() Changeset {
	var cs Changeset
	cs = appendSet(cs, FieldTitle, p.Title)
	cs = appendSet(cs, FieldDescription, p.Description)
	cs = appendSet(cs, FieldWhenDate, p.WhenDate)
	return cs
}
