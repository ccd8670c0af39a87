package catalog

import (
	"database/sql"
	"time"
)

type Course struct {
	ID          int64  `json:"id"`
	Code        string `json:"code" validate:"required,max=16"`
	Title       string `json:"title" validate:"required"`
	Credits     int    `json:"credits" validate:"gte=0,lte=12"`
	Description string `json:"description"`
	// Elective group letter, empty for courses outside the groups
	Group string `json:"group" validate:"omitempty,oneof=A B C D"`
	Core  bool   `json:"core"`
}

type Faculty struct {
	ID                int64  `json:"id"`
	Name              string `json:"name" validate:"required"`
	Title             string `json:"title"`
	Email             string `json:"email" validate:"omitempty,email"`
	Office            string `json:"office"`
	ResearchInterests string `json:"research_interests"`
}

type ResearchArea struct {
	ID            int64  `json:"id"`
	Name          string `json:"name" validate:"required"`
	Description   string `json:"description"`
	LeadFacultyID *int64 `json:"lead_faculty_id,omitempty"`
}

type GraduateProgram struct {
	ID          int64  `json:"id"`
	Name        string `json:"name" validate:"required"`
	Degree      string `json:"degree" validate:"required"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
}

type Upload struct {
	ID           int64     `json:"id"`
	OriginalName string    `json:"original_name"`
	StoredName   string    `json:"-"`
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"created_at"`
}

var courseTable = table[Course]{
	name:    "courses",
	columns: []string{"code", "title", "credits", "description", "elective_group", "core"},
	values: func(c *Course) []any {
		return []any{c.Code, c.Title, c.Credits, c.Description, c.Group, c.Core}
	},
	scan: func(row scanner) (*Course, error) {
		var c Course
		if err := row.Scan(&c.ID, &c.Code, &c.Title, &c.Credits, &c.Description, &c.Group, &c.Core); err != nil {
			return nil, err
		}
		return &c, nil
	},
	setID: func(c *Course, id int64) { c.ID = id },
}

var facultyTable = table[Faculty]{
	name:    "faculty",
	columns: []string{"name", "title", "email", "office", "research_interests"},
	values: func(f *Faculty) []any {
		return []any{f.Name, f.Title, f.Email, f.Office, f.ResearchInterests}
	},
	scan: func(row scanner) (*Faculty, error) {
		var f Faculty
		if err := row.Scan(&f.ID, &f.Name, &f.Title, &f.Email, &f.Office, &f.ResearchInterests); err != nil {
			return nil, err
		}
		return &f, nil
	},
	setID: func(f *Faculty, id int64) { f.ID = id },
}

var researchAreaTable = table[ResearchArea]{
	name:    "research_areas",
	columns: []string{"name", "description", "lead_faculty_id"},
	values: func(a *ResearchArea) []any {
		lead := sql.NullInt64{}
		if a.LeadFacultyID != nil {
			lead = sql.NullInt64{Int64: *a.LeadFacultyID, Valid: true}
		}
		return []any{a.Name, a.Description, lead}
	},
	scan: func(row scanner) (*ResearchArea, error) {
		var (
			a    ResearchArea
			lead sql.NullInt64
		)
		if err := row.Scan(&a.ID, &a.Name, &a.Description, &lead); err != nil {
			return nil, err
		}
		if lead.Valid {
			a.LeadFacultyID = &lead.Int64
		}
		return &a, nil
	},
	setID: func(a *ResearchArea, id int64) { a.ID = id },
	clone: func(a ResearchArea) ResearchArea {
		if a.LeadFacultyID != nil {
			lead := *a.LeadFacultyID
			a.LeadFacultyID = &lead
		}
		return a
	},
}

var graduateProgramTable = table[GraduateProgram]{
	name:    "graduate_programs",
	columns: []string{"name", "degree", "duration", "description"},
	values: func(p *GraduateProgram) []any {
		return []any{p.Name, p.Degree, p.Duration, p.Description}
	},
	scan: func(row scanner) (*GraduateProgram, error) {
		var p GraduateProgram
		if err := row.Scan(&p.ID, &p.Name, &p.Degree, &p.Duration, &p.Description); err != nil {
			return nil, err
		}
		return &p, nil
	},
	setID: func(p *GraduateProgram, id int64) { p.ID = id },
}

// created_at is kept as unix milliseconds.
var uploadTable = table[Upload]{
	name:    "uploads",
	columns: []string{"original_name", "stored_name", "content_type", "size", "created_at"},
	values: func(u *Upload) []any {
		return []any{u.OriginalName, u.StoredName, u.ContentType, u.Size, u.CreatedAt.UnixMilli()}
	},
	scan: func(row scanner) (*Upload, error) {
		var (
			u         Upload
			createdAt int64
		)
		if err := row.Scan(&u.ID, &u.OriginalName, &u.StoredName, &u.ContentType, &u.Size, &createdAt); err != nil {
			return nil, err
		}
		u.CreatedAt = time.UnixMilli(createdAt).UTC()
		return &u, nil
	},
	setID: func(u *Upload, id int64) { u.ID = id },
}
