// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mindwell/mindwell-go/internal/backend"
	"github.com/mindwell/mindwell-go/internal/middleware"
	"github.com/mindwell/mindwell-go/internal/model"
	"github.com/mindwell/mindwell-go/internal/render"
	"github.com/mindwell/mindwell-go/internal/session"
)

// dateLayout is the day format the backend stores for dated entries.
const dateLayout = "2006-01-02"

// WellnessHandler serves the signed-in wellness pages. Every page is
// a thin proxy: data lives in the backend, this layer only renders it
// and relays form posts.
type WellnessHandler struct {
	backend  *backend.Client
	renderer *render.Renderer
	store    session.Store
}

// NewWellnessHandler creates a new WellnessHandler.
func NewWellnessHandler(bc *backend.Client, renderer *render.Renderer, store session.Store) *WellnessHandler {
	return &WellnessHandler{backend: bc, renderer: renderer, store: store}
}

// homeData aggregates the dashboard widgets.
type homeData struct {
	LatestMood     *model.MoodEntry
	RecentJournals []model.JournalEntry
	Habits         []model.Habit
	Reminders      []model.Reminder
}

// Home renders the signed-in landing page.
func (h *WellnessHandler) Home(w http.ResponseWriter, r *http.Request) {
	token := middleware.GetSession(r).Token
	data := homeData{}

	moods, err := h.backend.ListMoods(r.Context(), token)
	if err != nil {
		handleBackendError(w, r, h.renderer, h.store, redirectHome, err)
		return
	}
	if len(moods) > 0 {
		data.LatestMood = &moods[0]
	}

	journals, err := h.backend.ListJournals(r.Context(), token)
	if err == nil {
		if len(journals) > 3 {
			journals = journals[:3]
		}
		data.RecentJournals = journals
	} else {
		slog.Warn("journal widget unavailable", "category", "backend", "error", err)
	}

	if habits, err := h.backend.ListHabits(r.Context(), token); err == nil {
		data.Habits = habits
	} else {
		slog.Warn("habit widget unavailable", "category", "backend", "error", err)
	}

	if reminders, err := h.backend.ListReminders(r.Context(), token); err == nil {
		data.Reminders = reminders
	} else {
		slog.Warn("reminder widget unavailable", "category", "backend", "error", err)
	}

	h.renderPage(w, r, "pages/home", "Home", data)
}

// journalData feeds the journal page. Editing, when set, pre-fills the
// form with an existing entry instead of a blank one.
type journalData struct {
	Entries []model.JournalEntry
	Editing *model.JournalEntry
}

// Journal renders the journal page.
func (h *WellnessHandler) Journal(w http.ResponseWriter, r *http.Request) {
	entries, err := h.backend.ListJournals(r.Context(), middleware.GetSession(r).Token)
	if err != nil {
		handleBackendError(w, r, h.renderer, h.store, redirectHome, err)
		return
	}
	h.renderPage(w, r, "pages/journal", "Journal", journalData{Entries: entries})
}

// JournalCreate handles the new-entry form post.
func (h *WellnessHandler) JournalCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, redirectJournal, "Invalid form data.")
		return
	}

	params := backend.JournalParams{
		Title:   r.FormValue("title"),
		Content: r.FormValue("content"),
		Date:    formDate(r, "date"),
		Mood:    r.FormValue("mood"),
	}
	if params.Title == "" || params.Content == "" {
		flashError(w, r, h.renderer, redirectJournal, "Title and content are required.")
		return
	}

	if err := h.backend.CreateJournal(r.Context(), middleware.GetSession(r).Token, params); err != nil {
		handleBackendError(w, r, h.renderer, h.store, redirectJournal, err)
		return
	}
	flashSuccess(w, r, h.renderer, redirectJournal, "Entry saved.")
}

// JournalEditForm renders the journal page with one entry loaded into
// the form for editing.
func (h *WellnessHandler) JournalEditForm(w http.ResponseWriter, r *http.Request) {
	entries, err := h.backend.ListJournals(r.Context(), middleware.GetSession(r).Token)
	if err != nil {
		handleBackendError(w, r, h.renderer, h.store, redirectJournal, err)
		return
	}

	id := chi.URLParam(r, "id")
	var editing *model.JournalEntry
	for i := range entries {
		if entries[i].ID == id {
			editing = &entries[i]
			break
		}
	}
	if editing == nil {
		flashError(w, r, h.renderer, redirectJournal, "That item no longer exists.")
		return
	}
	h.renderPage(w, r, "pages/journal", "Journal", journalData{Entries: entries, Editing: editing})
}

// JournalUpdate applies the edit form to an existing entry.
func (h *WellnessHandler) JournalUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, redirectJournal, "Invalid form data.")
		return
	}

	params := backend.JournalParams{
		Title:   r.FormValue("title"),
		Content: r.FormValue("content"),
		Date:    formDate(r, "date"),
		Mood:    r.FormValue("mood"),
	}
	if params.Title == "" || params.Content == "" {
		flashError(w, r, h.renderer, redirectJournal, "Title and content are required.")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.backend.UpdateJournal(r.Context(), middleware.GetSession(r).Token, id, params); err != nil {
		handleBackendError(w, r, h.renderer, h.store, redirectJournal, err)
		return
	}
	flashSuccess(w, r, h.renderer, redirectJournal, "Entry updated.")
}

// JournalDelete removes an entry.
func (h *WellnessHandler) JournalDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.backend.DeleteJournal(r.Context(), middleware.GetSession(r).Token, id); err != nil {
		handleBackendError(w, r, h.renderer, h.store, redirectJournal, err)
		return
	}
	flashSuccess(w, r, h.renderer, redirectJournal, "Entry deleted.")
}

// moodData feeds the mood page.
type moodData struct {
	Entries []model.MoodEntry
	Editing *model.MoodEntry
}

// Mood renders the mood history page.
func (h *WellnessHandler) Mood(w http.ResponseWriter, r *http.Request) {
	entries, err := h.backend.ListMoods(r.Context(), middleware.GetSession(r).Token)
	if err != nil {
		handleBackendError(w, r, h.renderer, h.store, redirectHome, err)
		return
	}
	h.renderPage(w, r, "pages/mood", "Mood", moodData{Entries: entries})
}

// MoodCreate records a mood score for a day.
func (h *WellnessHandler) MoodCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, redirectMood, "Invalid form data.")
		return
	}

	score, err := strconv.Atoi(r.FormValue("mood"))
	if err != nil || score < model.MoodMin || score > model.MoodMax {
		flashError(w, r, h.renderer, redirectMood, "Mood must be a score between 1 and 10.")
		return
	}

	params := backend.MoodParams{
		Mood: score,
		Note: r.FormValue("note"),
		Date: formDate(r, "date"),
	}
	if err := h.backend.CreateMood(r.Context(), middleware.GetSession(r).Token, params); err != nil {
		handleBackendError(w, r, h.renderer, h.store, redirectMood, err)
		return
	}
	flashSuccess(w, r, h.renderer, redirectMood, "Mood recorded.")
}

// MoodEditForm renders the mood page with one entry loaded for editing.
func (h *WellnessHandler) MoodEditForm(w http.ResponseWriter, r *http.Request) {
	entries, err := h.backend.ListMoods(r.Context(), middleware.GetSession(r).Token)
	if err != nil {
		handleBackendError(w, r, h.renderer, h.store, redirectMood, err)
		return
	}

	id := chi.URLParam(r, "id")
	var editing *model.MoodEntry
	for i := range entries {
		if entries[i].ID == id {
			editing = &entries[i]
			break
		}
	}
	if editing == nil {
		flashError(w, r, h.renderer, redirectMood, "That item no longer exists.")
		return
	}
	h.renderPage(w, r, "pages/mood", "Mood", moodData{Entries: entries, Editing: editing})
}

// MoodUpdate applies the edit form to a mood entry.
func (h *WellnessHandler) MoodUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, redirectMood, "Invalid form data.")
		return
	}

	score, err := strconv.Atoi(r.FormValue("mood"))
	if err != nil || score < model.MoodMin || score > model.MoodMax {
		flashError(w, r, h.renderer, redirectMood, "Mood must be a score between 1 and 10.")
		return
	}

	params := backend.MoodParams{
		Mood: score,
		Note: r.FormValue("note"),
		Date: formDate(r, "date"),
	}
	id := chi.URLParam(r, "id")
	if err := h.backend.UpdateMood(r.Context(), middleware.GetSession(r).Token, id, params); err != nil {
		handleBackendError(w, r, h.renderer, h.store, redirectMood, err)
		return
	}
	flashSuccess(w, r, h.renderer, redirectMood, "Mood entry updated.")
}

// MoodDelete removes a mood entry.
func (h *WellnessHandler) MoodDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.backend.DeleteMood(r.Context(), middleware.GetSession(r).Token, id); err != nil {
		handleBackendError(w, r, h.renderer, h.store, redirectMood, err)
		return
	}
	flashSuccess(w, r, h.renderer, redirectMood, "Mood entry deleted.")
}

// habitsData feeds the habits page.
type habitsData struct {
	Habits  []model.Habit
	Editing *model.Habit
}

// Habits renders the habit tracker page.
func (h *WellnessHandler) Habits(w http.ResponseWriter, r *http.Request) {
	habits, err := h.backend.ListHabits(r.Context(), middleware.GetSession(r).Token)
	if err != nil {
		handleBackendError(w, r, h.renderer, h.store, redirectHome, err)
		return
	}
	h.renderPage(w, r, "pages/habits", "Habits", habitsData{Habits: habits})
}

// HabitCreate adds a habit.
func (h *WellnessHandler) HabitCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, redirectHabits, "Invalid form data.")
		return
	}

	params := backend.HabitParams{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Frequency:   r.FormValue("frequency"),
	}
	if params.Name == "" {
		flashError(w, r, h.renderer, redirectHabits, "Habit name is required.")
		return
	}
	if params.Frequency == "" {
		params.Frequency = "daily"
	}

	if err := h.backend.CreateHabit(r.Context(), middleware.GetSession(r).Token, params); err != nil {
		handleBackendError(w, r, h.renderer, h.store, redirectHabits, err)
		return
	}
	flashSuccess(w, r, h.renderer, redirectHabits, "Habit added.")
}

// HabitEditForm renders the habits page with one habit loaded for
// editing.
func (h *WellnessHandler) HabitEditForm(w http.ResponseWriter, r *http.Request) {
	habits, err := h.backend.ListHabits(r.Context(), middleware.GetSession(r).Token)
	if err != nil {
		handleBackendError(w, r, h.renderer, h.store, redirectHabits, err)
		return
	}

	id := chi.URLParam(r, "id")
	var editing *model.Habit
	for i := range habits {
		if habits[i].ID == id {
			editing = &habits[i]
			break
		}
	}
	if editing == nil {
		flashError(w, r, h.renderer, redirectHabits, "That item no longer exists.")
		return
	}
	h.renderPage(w, r, "pages/habits", "Habits", habitsData{Habits: habits, Editing: editing})
}

// HabitUpdate applies the edit form to a habit. The streak is the
// backend's to manage; only the descriptive fields are writable.
func (h *WellnessHandler) HabitUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, redirectHabits, "Invalid form data.")
		return
	}

	params := backend.HabitParams{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Frequency:   r.FormValue("frequency"),
	}
	if params.Name == "" {
		flashError(w, r, h.renderer, redirectHabits, "Habit name is required.")
		return
	}
	if params.Frequency == "" {
		params.Frequency = "daily"
	}

	id := chi.URLParam(r, "id")
	if err := h.backend.UpdateHabit(r.Context(), middleware.GetSession(r).Token, id, params); err != nil {
		handleBackendError(w, r, h.renderer, h.store, redirectHabits, err)
		return
	}
	flashSuccess(w, r, h.renderer, redirectHabits, "Habit updated.")
}

// HabitComplete marks today's completion and advances the streak.
func (h *WellnessHandler) HabitComplete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.backend.CompleteHabit(r.Context(), middleware.GetSession(r).Token, id); err != nil {
		handleBackendError(w, r, h.renderer, h.store, redirectHabits, err)
		return
	}
	http.Redirect(w, r, redirectHabits, http.StatusSeeOther)
}

// HabitDelete removes a habit.
func (h *WellnessHandler) HabitDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.backend.DeleteHabit(r.Context(), middleware.GetSession(r).Token, id); err != nil {
		handleBackendError(w, r, h.renderer, h.store, redirectHabits, err)
		return
	}
	flashSuccess(w, r, h.renderer, redirectHabits, "Habit deleted.")
}

// exercisesData feeds the exercises page.
type exercisesData struct {
	Entries []model.Exercise
	Editing *model.Exercise
}

// Exercises renders the exercise log page.
func (h *WellnessHandler) Exercises(w http.ResponseWriter, r *http.Request) {
	entries, err := h.backend.ListExercises(r.Context(), middleware.GetSession(r).Token)
	if err != nil {
		handleBackendError(w, r, h.renderer, h.store, redirectHome, err)
		return
	}
	h.renderPage(w, r, "pages/exercises", "Exercises", exercisesData{Entries: entries})
}

// ExerciseCreate logs a workout.
func (h *WellnessHandler) ExerciseCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, redirectExercises, "Invalid form data.")
		return
	}

	duration, err := strconv.Atoi(r.FormValue("duration"))
	if err != nil || duration <= 0 {
		flashError(w, r, h.renderer, redirectExercises, "Duration must be a positive number of minutes.")
		return
	}

	params := backend.ExerciseParams{
		Type:     r.FormValue("type"),
		Duration: duration,
		Date:     formDate(r, "date"),
		Notes:    r.FormValue("notes"),
	}
	if params.Type == "" {
		flashError(w, r, h.renderer, redirectExercises, "Exercise type is required.")
		return
	}

	if err := h.backend.CreateExercise(r.Context(), middleware.GetSession(r).Token, params); err != nil {
		handleBackendError(w, r, h.renderer, h.store, redirectExercises, err)
		return
	}
	flashSuccess(w, r, h.renderer, redirectExercises, "Workout logged.")
}

// ExerciseEditForm renders the exercises page with one workout loaded
// for editing.
func (h *WellnessHandler) ExerciseEditForm(w http.ResponseWriter, r *http.Request) {
	entries, err := h.backend.ListExercises(r.Context(), middleware.GetSession(r).Token)
	if err != nil {
		handleBackendError(w, r, h.renderer, h.store, redirectExercises, err)
		return
	}

	id := chi.URLParam(r, "id")
	var editing *model.Exercise
	for i := range entries {
		if entries[i].ID == id {
			editing = &entries[i]
			break
		}
	}
	if editing == nil {
		flashError(w, r, h.renderer, redirectExercises, "That item no longer exists.")
		return
	}
	h.renderPage(w, r, "pages/exercises", "Exercises", exercisesData{Entries: entries, Editing: editing})
}

// ExerciseUpdate applies the edit form to a logged workout.
func (h *WellnessHandler) ExerciseUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, redirectExercises, "Invalid form data.")
		return
	}

	duration, err := strconv.Atoi(r.FormValue("duration"))
	if err != nil || duration <= 0 {
		flashError(w, r, h.renderer, redirectExercises, "Duration must be a positive number of minutes.")
		return
	}

	params := backend.ExerciseParams{
		Type:     r.FormValue("type"),
		Duration: duration,
		Date:     formDate(r, "date"),
		Notes:    r.FormValue("notes"),
	}
	if params.Type == "" {
		flashError(w, r, h.renderer, redirectExercises, "Exercise type is required.")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.backend.UpdateExercise(r.Context(), middleware.GetSession(r).Token, id, params); err != nil {
		handleBackendError(w, r, h.renderer, h.store, redirectExercises, err)
		return
	}
	flashSuccess(w, r, h.renderer, redirectExercises, "Workout updated.")
}

// ExerciseDelete removes a logged workout.
func (h *WellnessHandler) ExerciseDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.backend.DeleteExercise(r.Context(), middleware.GetSession(r).Token, id); err != nil {
		handleBackendError(w, r, h.renderer, h.store, redirectExercises, err)
		return
	}
	flashSuccess(w, r, h.renderer, redirectExercises, "Workout deleted.")
}

// remindersData feeds the reminders page.
type remindersData struct {
	Reminders []model.Reminder
	Editing   *model.Reminder
}

// Reminders renders the reminders page.
func (h *WellnessHandler) Reminders(w http.ResponseWriter, r *http.Request) {
	reminders, err := h.backend.ListReminders(r.Context(), middleware.GetSession(r).Token)
	if err != nil {
		handleBackendError(w, r, h.renderer, h.store, redirectHome, err)
		return
	}
	h.renderPage(w, r, "pages/reminders", "Reminders", remindersData{Reminders: reminders})
}

// ReminderCreate adds a reminder.
func (h *WellnessHandler) ReminderCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, redirectReminders, "Invalid form data.")
		return
	}

	params := backend.ReminderParams{
		Title: r.FormValue("title"),
		Time:  r.FormValue("time"),
	}
	if params.Title == "" || params.Time == "" {
		flashError(w, r, h.renderer, redirectReminders, "Title and time are required.")
		return
	}

	if err := h.backend.CreateReminder(r.Context(), middleware.GetSession(r).Token, params); err != nil {
		handleBackendError(w, r, h.renderer, h.store, redirectReminders, err)
		return
	}
	flashSuccess(w, r, h.renderer, redirectReminders, "Reminder added.")
}

// ReminderEditForm renders the reminders page with one reminder loaded
// for editing.
func (h *WellnessHandler) ReminderEditForm(w http.ResponseWriter, r *http.Request) {
	reminders, err := h.backend.ListReminders(r.Context(), middleware.GetSession(r).Token)
	if err != nil {
		handleBackendError(w, r, h.renderer, h.store, redirectReminders, err)
		return
	}

	id := chi.URLParam(r, "id")
	var editing *model.Reminder
	for i := range reminders {
		if reminders[i].ID == id {
			editing = &reminders[i]
			break
		}
	}
	if editing == nil {
		flashError(w, r, h.renderer, redirectReminders, "That item no longer exists.")
		return
	}
	h.renderPage(w, r, "pages/reminders", "Reminders", remindersData{Reminders: reminders, Editing: editing})
}

// ReminderUpdate applies the edit form to a reminder.
func (h *WellnessHandler) ReminderUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, redirectReminders, "Invalid form data.")
		return
	}

	params := backend.ReminderParams{
		Title: r.FormValue("title"),
		Time:  r.FormValue("time"),
	}
	if params.Title == "" || params.Time == "" {
		flashError(w, r, h.renderer, redirectReminders, "Title and time are required.")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.backend.UpdateReminder(r.Context(), middleware.GetSession(r).Token, id, params); err != nil {
		handleBackendError(w, r, h.renderer, h.store, redirectReminders, err)
		return
	}
	flashSuccess(w, r, h.renderer, redirectReminders, "Reminder updated.")
}

// ReminderToggle flips the done state.
func (h *WellnessHandler) ReminderToggle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.backend.ToggleReminder(r.Context(), middleware.GetSession(r).Token, id); err != nil {
		handleBackendError(w, r, h.renderer, h.store, redirectReminders, err)
		return
	}
	http.Redirect(w, r, redirectReminders, http.StatusSeeOther)
}

// ReminderDelete removes a reminder.
func (h *WellnessHandler) ReminderDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.backend.DeleteReminder(r.Context(), middleware.GetSession(r).Token, id); err != nil {
		handleBackendError(w, r, h.renderer, h.store, redirectReminders, err)
		return
	}
	flashSuccess(w, r, h.renderer, redirectReminders, "Reminder deleted.")
}

// calendarDay collects everything recorded on one date.
type calendarDay struct {
	Date      string
	Journals  []model.JournalEntry
	Moods     []model.MoodEntry
	Exercises []model.Exercise
}

// calendarData feeds the calendar page.
type calendarData struct {
	Days []calendarDay
}

// Calendar renders a merged, date-grouped view across journals, moods
// and exercises, newest day first.
func (h *WellnessHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	token := middleware.GetSession(r).Token

	journals, err := h.backend.ListJournals(r.Context(), token)
	if err != nil {
		handleBackendError(w, r, h.renderer, h.store, redirectHome, err)
		return
	}
	moods, err := h.backend.ListMoods(r.Context(), token)
	if err != nil {
		handleBackendError(w, r, h.renderer, h.store, redirectHome, err)
		return
	}
	exercises, err := h.backend.ListExercises(r.Context(), token)
	if err != nil {
		handleBackendError(w, r, h.renderer, h.store, redirectHome, err)
		return
	}

	days := make(map[string]*calendarDay)
	day := func(date string) *calendarDay {
		if d, ok := days[date]; ok {
			return d
		}
		d := &calendarDay{Date: date}
		days[date] = d
		return d
	}
	for _, j := range journals {
		d := day(j.Date)
		d.Journals = append(d.Journals, j)
	}
	for _, m := range moods {
		d := day(m.Date)
		d.Moods = append(d.Moods, m)
	}
	for _, e := range exercises {
		d := day(e.Date)
		d.Exercises = append(d.Exercises, e)
	}

	sorted := make([]calendarDay, 0, len(days))
	for _, d := range days {
		sorted = append(sorted, *d)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date > sorted[j].Date })

	h.renderPage(w, r, "pages/calendar", "Calendar", calendarData{Days: sorted})
}

// formDate returns the submitted date field, defaulting to today.
func formDate(r *http.Request, field string) string {
	if v := r.FormValue(field); v != "" {
		return v
	}
	return time.Now().Format(dateLayout)
}

func (h *WellnessHandler) renderPage(w http.ResponseWriter, r *http.Request, name, title string, data any) {
	err := h.renderer.Render(w, r, name, render.TemplateData{
		Title: title,
		User:  middleware.GetUser(r),
		Data:  data,
	})
	if err != nil {
		slog.Error("page render failed", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
