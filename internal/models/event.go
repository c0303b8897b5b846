package models

import (
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// DateLayout and TimeLayout are the wire formats for event dates and
// start times ("2006-01-02" and "15:04").
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

const EventStatusActive = "active"

type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	Title       string    `bun:"title,notnull" json:"title"`
	Description string    `bun:"description,notnull" json:"description"`
	Date        string    `bun:"date,notnull" json:"date"`
	Time        string    `bun:"time,notnull" json:"time"`
	Duration    int       `bun:"duration,default:2" json:"duration"`
	Location    string    `bun:"location,notnull" json:"location"`
	Category    string    `bun:"category,notnull" json:"category"`
	Capacity    int       `bun:"capacity,notnull" json:"capacity"`
	Price       float64   `bun:"price,default:0" json:"price"`
	Image       string    `bun:"image" json:"image"`
	Organizer   string    `bun:"organizer" json:"organizer"`
	Status      string    `bun:"status,default:'active'" json:"status"`
	Tags        []string  `bun:"tags" json:"tags"`
	CreatedAt   time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

// StartsAt combines the event's date and start time into a single
// timestamp in the local timezone.
func (e *Event) StartsAt() (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+TimeLayout, e.Date+" "+e.Time, time.Local)
}

// EventPatch enumerates the updatable event fields. A nil field is
// left untouched; each set field is validated before it is applied.
type EventPatch struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Date        *string   `json:"date"`
	Time        *string   `json:"time"`
	Duration    *int      `json:"duration"`
	Location    *string   `json:"location"`
	Category    *string   `json:"category"`
	Capacity    *int      `json:"capacity"`
	Price       *float64  `json:"price"`
	Image       *string   `json:"image"`
	Organizer   *string   `json:"organizer"`
	Status      *string   `json:"status"`
	Tags        *[]string `json:"tags"`
}

// Validate checks every set field of the patch.
func (p *EventPatch) Validate() error {
	if p.Date != nil {
		if _, err := time.Parse(DateLayout, *p.Date); err != nil {
			return fmt.Errorf("date must be in YYYY-MM-DD format")
		}
	}
	if p.Time != nil {
		if _, err := time.Parse(TimeLayout, *p.Time); err != nil {
			return fmt.Errorf("time must be in HH:MM format")
		}
	}
	if p.Capacity != nil && *p.Capacity < 0 {
		return fmt.Errorf("capacity must not be negative")
	}
	if p.Price != nil && *p.Price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	if p.Duration != nil && *p.Duration <= 0 {
		return fmt.Errorf("duration must be positive")
	}
	return nil
}

// Apply copies the set fields onto the event.
func (p *EventPatch) Apply(e *Event) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Time != nil {
		e.Time = *p.Time
	}
	if p.Duration != nil {
		e.Duration = *p.Duration
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Capacity != nil {
		e.Capacity = *p.Capacity
	}
	if p.Price != nil {
		e.Price = *p.Price
	}
	if p.Image != nil {
		e.Image = *p.Image
	}
	if p.Organizer != nil {
		e.Organizer = *p.Organizer
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.Tags != nil {
		e.Tags = *p.Tags
	}
}
