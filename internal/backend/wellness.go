// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package backend

import (
	"context"
	"net/http"

	"github.com/mindwell/mindwell-go/internal/model"
)

// Wellness resource paths.
const (
	pathJournals  = "/api/journals"
	pathMoods     = "/api/moods"
	pathHabits    = "/api/habits"
	pathExercises = "/api/exercises"
	pathReminders = "/api/reminders"
)

// list fetches a resource collection into out.
func (c *Client) list(ctx context.Context, token, path string, out any) error {
	env, err := c.doJSON(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return err
	}
	return decodeData(env, out)
}

// JournalParams are the writable journal entry fields.
type JournalParams struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Date    string `json:"date"`
	Mood    string `json:"mood,omitempty"`
}

// ListJournals returns the caller's journal entries.
func (c *Client) ListJournals(ctx context.Context, token string) ([]model.JournalEntry, error) {
	var entries []model.JournalEntry
	if err := c.list(ctx, token, pathJournals, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// CreateJournal adds a journal entry.
func (c *Client) CreateJournal(ctx context.Context, token string, params JournalParams) error {
	_, err := c.doJSON(ctx, http.MethodPost, pathJournals, token, params)
	return err
}

// UpdateJournal replaces an entry's writable fields.
func (c *Client) UpdateJournal(ctx context.Context, token, id string, params JournalParams) error {
	_, err := c.doJSON(ctx, http.MethodPut, pathJournals+"/"+id, token, params)
	return err
}

// DeleteJournal removes an entry.
func (c *Client) DeleteJournal(ctx context.Context, token, id string) error {
	_, err := c.doJSON(ctx, http.MethodDelete, pathJournals+"/"+id, token, nil)
	return err
}

// MoodParams are the writable mood entry fields.
type MoodParams struct {
	Mood int    `json:"mood"`
	Note string `json:"note,omitempty"`
	Date string `json:"date"`
}

// ListMoods returns the caller's mood entries.
func (c *Client) ListMoods(ctx context.Context, token string) ([]model.MoodEntry, error) {
	var entries []model.MoodEntry
	if err := c.list(ctx, token, pathMoods, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// CreateMood records a mood score.
func (c *Client) CreateMood(ctx context.Context, token string, params MoodParams) error {
	_, err := c.doJSON(ctx, http.MethodPost, pathMoods, token, params)
	return err
}

// UpdateMood replaces a mood entry.
func (c *Client) UpdateMood(ctx context.Context, token, id string, params MoodParams) error {
	_, err := c.doJSON(ctx, http.MethodPut, pathMoods+"/"+id, token, params)
	return err
}

// DeleteMood removes a mood entry.
func (c *Client) DeleteMood(ctx context.Context, token, id string) error {
	_, err := c.doJSON(ctx, http.MethodDelete, pathMoods+"/"+id, token, nil)
	return err
}

// HabitParams are the writable habit fields.
type HabitParams struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Frequency   string `json:"frequency"`
}

// ListHabits returns the caller's habits.
func (c *Client) ListHabits(ctx context.Context, token string) ([]model.Habit, error) {
	var habits []model.Habit
	if err := c.list(ctx, token, pathHabits, &habits); err != nil {
		return nil, err
	}
	return habits, nil
}

// CreateHabit adds a habit.
func (c *Client) CreateHabit(ctx context.Context, token string, params HabitParams) error {
	_, err := c.doJSON(ctx, http.MethodPost, pathHabits, token, params)
	return err
}

// UpdateHabit replaces a habit's writable fields.
func (c *Client) UpdateHabit(ctx context.Context, token, id string, params HabitParams) error {
	_, err := c.doJSON(ctx, http.MethodPut, pathHabits+"/"+id, token, params)
	return err
}

// DeleteHabit removes a habit.
func (c *Client) DeleteHabit(ctx context.Context, token, id string) error {
	_, err := c.doJSON(ctx, http.MethodDelete, pathHabits+"/"+id, token, nil)
	return err
}

// CompleteHabit marks today's completion and advances the streak.
func (c *Client) CompleteHabit(ctx context.Context, token, id string) error {
	_, err := c.doJSON(ctx, http.MethodPatch, pathHabits+"/"+id+"/complete", token, nil)
	return err
}

// ExerciseParams are the writable exercise fields.
type ExerciseParams struct {
	Type     string `json:"type"`
	Duration int    `json:"duration"`
	Date     string `json:"date"`
	Notes    string `json:"notes,omitempty"`
}

// ListExercises returns the caller's exercise log.
func (c *Client) ListExercises(ctx context.Context, token string) ([]model.Exercise, error) {
	var entries []model.Exercise
	if err := c.list(ctx, token, pathExercises, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// CreateExercise logs a workout.
func (c *Client) CreateExercise(ctx context.Context, token string, params ExerciseParams) error {
	_, err := c.doJSON(ctx, http.MethodPost, pathExercises, token, params)
	return err
}

// UpdateExercise replaces a logged workout.
func (c *Client) UpdateExercise(ctx context.Context, token, id string, params ExerciseParams) error {
	_, err := c.doJSON(ctx, http.MethodPut, pathExercises+"/"+id, token, params)
	return err
}

// DeleteExercise removes a logged workout.
func (c *Client) DeleteExercise(ctx context.Context, token, id string) error {
	_, err := c.doJSON(ctx, http.MethodDelete, pathExercises+"/"+id, token, nil)
	return err
}

// ReminderParams are the writable reminder fields.
type ReminderParams struct {
	Title string `json:"title"`
	Time  string `json:"time"`
}

// ListReminders returns the caller's reminders.
func (c *Client) ListReminders(ctx context.Context, token string) ([]model.Reminder, error) {
	var reminders []model.Reminder
	if err := c.list(ctx, token, pathReminders, &reminders); err != nil {
		return nil, err
	}
	return reminders, nil
}

// CreateReminder adds a reminder.
func (c *Client) CreateReminder(ctx context.Context, token string, params ReminderParams) error {
	_, err := c.doJSON(ctx, http.MethodPost, pathReminders, token, params)
	return err
}

// UpdateReminder replaces a reminder's writable fields.
func (c *Client) UpdateReminder(ctx context.Context, token, id string, params ReminderParams) error {
	_, err := c.doJSON(ctx, http.MethodPut, pathReminders+"/"+id, token, params)
	return err
}

// DeleteReminder removes a reminder.
func (c *Client) DeleteReminder(ctx context.Context, token, id string) error {
	_, err := c.doJSON(ctx, http.MethodDelete, pathReminders+"/"+id, token, nil)
	return err
}

// ToggleReminder flips a reminder's done state.
func (c *Client) ToggleReminder(ctx context.Context, token, id string) error {
	_, err := c.doJSON(ctx, http.MethodPatch, pathReminders+"/"+id+"/toggle", token, nil)
	return err
}
