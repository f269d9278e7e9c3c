// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// JournalEntry is a dated free-text journal record.
type JournalEntry struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Date      string    `json:"date"`
	Mood      string    `json:"mood,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// MoodEntry records a mood score between 1 and 10 for a day.
type MoodEntry struct {
	ID        string    `json:"_id"`
	Mood      int       `json:"mood"`
	Note      string    `json:"note,omitempty"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"createdAt"`
}

// Mood score bounds accepted by the backend.
const (
	MoodMin = 1
	MoodMax = 10
)

// Habit is a recurring activity with a completion streak.
type Habit struct {
	ID            string    `json:"_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Frequency     string    `json:"frequency"`
	Streak        int       `json:"streak"`
	LastCompleted string    `json:"lastCompleted,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Exercise is a logged workout session.
type Exercise struct {
	ID        string    `json:"_id"`
	Type      string    `json:"type"`
	Duration  int       `json:"duration"`
	Date      string    `json:"date"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Reminder is a time-of-day reminder that can be marked done.
type Reminder struct {
	ID    string `json:"_id"`
	Title string `json:"title"`
	Time  string `json:"time"`
	Done  bool   `json:"done"`
}
