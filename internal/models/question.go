package models

import (
	"time"
)

// Framework is the coarse category dimension the window rule is enforced over.
type Framework string

const (
	FrameworkConnection Framework = "connection"
	FrameworkEnneagram  Framework = "enneagram"
)

// Frameworks lists the recognized framework values.
var Frameworks = []Framework{FrameworkConnection, FrameworkEnneagram}

func (f Framework) IsValid() bool {
	for _, known := range Frameworks {
		if f == known {
			return true
		}
	}
	return false
}

type SwipeDirection string

const (
	SwipeUp    SwipeDirection = "up"
	SwipeRight SwipeDirection = "right"
	SwipeLeft  SwipeDirection = "left"
	SwipeDown  SwipeDirection = "down"
)

// SwipeDirections is also the tie-break order used when ranking swipes.
var SwipeDirections = []SwipeDirection{SwipeUp, SwipeRight, SwipeLeft, SwipeDown}

func (d SwipeDirection) IsValid() bool {
	switch d {
	case SwipeUp, SwipeRight, SwipeLeft, SwipeDown:
		return true
	}
	return false
}

// Opposite returns the direction with inverted polarity (up/down, right/left).
func (d SwipeDirection) Opposite() SwipeDirection {
	switch d {
	case SwipeUp:
		return SwipeDown
	case SwipeDown:
		return SwipeUp
	case SwipeRight:
		return SwipeLeft
	case SwipeLeft:
		return SwipeRight
	}
	return d
}

// Tags recognized by the ordering engine.
const (
	TagWarmup     = "warmup"
	TagHighSignal = "high-signal"
)

type Question struct {
	ID        uint                       `json:"id" yaml:"id" gorm:"primaryKey"`
	Text      string                     `json:"text" yaml:"text" gorm:"type:text;not null"`
	Framework Framework                  `json:"framework" yaml:"framework" gorm:"not null;index;size:32"`
	Category  string                     `json:"category" yaml:"category" gorm:"not null;index;size:64"`
	Reverse   bool                       `json:"reverse" yaml:"reverse,omitempty" gorm:"default:false"`
	Weight    map[SwipeDirection]float64 `json:"weight" yaml:"weight" gorm:"type:jsonb;serializer:json"`
	Tags      []string                   `json:"tags,omitempty" yaml:"tags,omitempty" gorm:"type:jsonb;serializer:json"`

	Active    bool      `json:"active" yaml:"-" gorm:"default:true;index"`
	CreatedBy string    `json:"created_by,omitempty" yaml:"-" gorm:"index;size:255"`
	CreatedAt time.Time `json:"created_at" yaml:"-"`
	UpdatedAt time.Time `json:"updated_at" yaml:"-"`
}

func (Question) TableName() string {
	return "questions"
}

// HasTag reports whether the question carries tag.
func (q *Question) HasTag(tag string) bool {
	for _, t := range q.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// QuestionOrder is one entry of a computed presentation sequence.
type QuestionOrder struct {
	ID           uint `json:"id" yaml:"id"`
	DisplayOrder int  `json:"display_order" yaml:"display_order"`
}
