// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindwell/mindwell-go/internal/model"
)

func decodeBody(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

// wellnessBackend fakes the five wellness collections, keyed by path.
func wellnessBackend(t *testing.T, data map[string]any) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := data[r.URL.Path]
		if !ok {
			t.Errorf("unexpected backend call: %s %s", r.Method, r.URL.Path)
			envelopeError(w, http.StatusNotFound, "not found")
			return
		}
		envelope(w, payload)
	}
}

func TestJournalRendersEntries(t *testing.T) {
	app := newTestApp(t, wellnessBackend(t, map[string]any{
		"/api/journals": []model.JournalEntry{
			{ID: "j1", Title: "Morning pages", Content: "Slept well.", Date: "2026-01-15"},
			{ID: "j2", Title: "Evening recap", Content: "Long day.", Date: "2026-01-14"},
		},
	}))
	h := NewWellnessHandler(app.backend, app.renderer, app.store)

	req := httptest.NewRequest(http.MethodGet, RouteJournal, nil)
	signIn(t, req, testUser(), "tok-123")

	rec := app.serve(http.HandlerFunc(h.Journal), req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Morning pages")
	assert.Contains(t, body, "Evening recap")
}

func TestJournalCreateRequiresTitleAndContent(t *testing.T) {
	app := newTestApp(t, nil)
	h := NewWellnessHandler(app.backend, app.renderer, app.store)

	req := postForm(RouteJournal, url.Values{"title": {"Only a title"}})
	signIn(t, req, testUser(), "tok-123")

	rec := app.serve(http.HandlerFunc(h.JournalCreate), req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteJournal, rec.Header().Get("Location"))
}

func TestJournalCreateDefaultsDateToToday(t *testing.T) {
	var gotDate atomic.Value
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Date string `json:"date"`
		}
		require.NoError(t, decodeBody(r, &params))
		gotDate.Store(params.Date)
		envelope(w, map[string]string{})
	})
	h := NewWellnessHandler(app.backend, app.renderer, app.store)

	req := postForm(RouteJournal, url.Values{
		"title":   {"Morning pages"},
		"content": {"Slept well."},
	})
	signIn(t, req, testUser(), "tok-123")

	rec := app.serve(http.HandlerFunc(h.JournalCreate), req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	date, _ := gotDate.Load().(string)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, date)
}

func TestMoodCreateValidatesScore(t *testing.T) {
	tests := []struct {
		name string
		mood string
	}{
		{"not a number", "great"},
		{"below range", "0"},
		{"above range", "11"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, nil)
			h := NewWellnessHandler(app.backend, app.renderer, app.store)

			req := postForm(RouteMood, url.Values{"mood": {tt.mood}})
			signIn(t, req, testUser(), "tok-123")

			rec := app.serve(http.HandlerFunc(h.MoodCreate), req)

			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, RouteMood, rec.Header().Get("Location"))
		})
	}
}

func TestMoodCreateAcceptsValidScore(t *testing.T) {
	var calls atomic.Int32
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/moods", r.URL.Path)
		calls.Add(1)
		envelope(w, map[string]string{})
	})
	h := NewWellnessHandler(app.backend, app.renderer, app.store)

	req := postForm(RouteMood, url.Values{"mood": {"7"}, "note": {"solid day"}})
	signIn(t, req, testUser(), "tok-123")

	rec := app.serve(http.HandlerFunc(h.MoodCreate), req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.EqualValues(t, 1, calls.Load())
}

func TestHabitCreateDefaultsFrequency(t *testing.T) {
	var gotFrequency atomic.Value
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Frequency string `json:"frequency"`
		}
		require.NoError(t, decodeBody(r, &params))
		gotFrequency.Store(params.Frequency)
		envelope(w, map[string]string{})
	})
	h := NewWellnessHandler(app.backend, app.renderer, app.store)

	req := postForm(RouteHabits, url.Values{"name": {"Meditate"}})
	signIn(t, req, testUser(), "tok-123")

	rec := app.serve(http.HandlerFunc(h.HabitCreate), req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "daily", gotFrequency.Load())
}

func TestExerciseCreateRequiresPositiveDuration(t *testing.T) {
	app := newTestApp(t, nil)
	h := NewWellnessHandler(app.backend, app.renderer, app.store)

	req := postForm(RouteExercises, url.Values{"type": {"run"}, "duration": {"-5"}})
	signIn(t, req, testUser(), "tok-123")

	rec := app.serve(http.HandlerFunc(h.ExerciseCreate), req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteExercises, rec.Header().Get("Location"))
}

func TestHomeDegradesWhenWidgetsFail(t *testing.T) {
	// Moods are required; journal, habit and reminder widgets degrade
	// to empty sections when their calls fail.
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/moods" {
			envelope(w, []model.MoodEntry{{ID: "m1", Mood: 8, Date: "2026-01-15"}})
			return
		}
		envelopeError(w, http.StatusInternalServerError, "backend down")
	})
	h := NewWellnessHandler(app.backend, app.renderer, app.store)

	req := httptest.NewRequest(http.MethodGet, RouteHome, nil)
	signIn(t, req, testUser(), "tok-123")

	rec := app.serve(http.HandlerFunc(h.Home), req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "8/10")
}

func TestHomeFailsWithoutMoods(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		envelopeError(w, http.StatusInternalServerError, "backend down")
	})
	h := NewWellnessHandler(app.backend, app.renderer, app.store)

	req := httptest.NewRequest(http.MethodGet, RouteHome, nil)
	signIn(t, req, testUser(), "tok-123")

	rec := app.serve(http.HandlerFunc(h.Home), req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestCalendarGroupsByDateNewestFirst(t *testing.T) {
	app := newTestApp(t, wellnessBackend(t, map[string]any{
		"/api/journals": []model.JournalEntry{
			{ID: "j1", Title: "Older entry", Content: "x", Date: "2026-01-10"},
		},
		"/api/moods": []model.MoodEntry{
			{ID: "m1", Mood: 6, Date: "2026-01-12"},
			{ID: "m2", Mood: 9, Date: "2026-01-10"},
		},
		"/api/exercises": []model.Exercise{
			{ID: "e1", Type: "run", Duration: 30, Date: "2026-01-12"},
		},
	}))
	h := NewWellnessHandler(app.backend, app.renderer, app.store)

	req := httptest.NewRequest(http.MethodGet, RouteCalendar, nil)
	signIn(t, req, testUser(), "tok-123")

	rec := app.serve(http.HandlerFunc(h.Calendar), req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	first := strings.Index(body, "2026-01-12")
	second := strings.Index(body, "2026-01-10")
	require.GreaterOrEqual(t, first, 0)
	require.GreaterOrEqual(t, second, 0)
	assert.Less(t, first, second, "newer day must render before the older one")
}

func TestDeleteMissingEntryFlashesNotFound(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		envelopeError(w, http.StatusNotFound, "entry not found")
	})
	h := NewWellnessHandler(app.backend, app.renderer, app.store)

	router := chi.NewRouter()
	router.Post(RouteJournal+RouteSuffixDelete, h.JournalDelete)

	req := postForm(RouteJournal+"/j-gone/delete", url.Values{})
	signIn(t, req, testUser(), "tok-123")

	rec := app.serve(router, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteJournal, rec.Header().Get("Location"))
}

func TestJournalEditFormPrefillsEntry(t *testing.T) {
	app := newTestApp(t, wellnessBackend(t, map[string]any{
		"/api/journals": []model.JournalEntry{
			{ID: "j1", Title: "Morning pages", Content: "Slept well.", Date: "2026-01-15"},
			{ID: "j2", Title: "Evening recap", Content: "Long day.", Date: "2026-01-14"},
		},
	}))
	h := NewWellnessHandler(app.backend, app.renderer, app.store)

	router := chi.NewRouter()
	router.Get(RouteJournal+RouteSuffixEdit, h.JournalEditForm)

	req := httptest.NewRequest(http.MethodGet, RouteJournal+"/j1/edit", nil)
	signIn(t, req, testUser(), "tok-123")

	rec := app.serve(router, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `value="Morning pages"`)
	assert.Contains(t, body, `action="/journal/j1"`)
	assert.Contains(t, body, "Slept well.")
}

func TestJournalEditFormMissingEntryRedirects(t *testing.T) {
	app := newTestApp(t, wellnessBackend(t, map[string]any{
		"/api/journals": []model.JournalEntry{},
	}))
	h := NewWellnessHandler(app.backend, app.renderer, app.store)

	router := chi.NewRouter()
	router.Get(RouteJournal+RouteSuffixEdit, h.JournalEditForm)

	req := httptest.NewRequest(http.MethodGet, RouteJournal+"/j-gone/edit", nil)
	signIn(t, req, testUser(), "tok-123")

	rec := app.serve(router, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteJournal, rec.Header().Get("Location"))
}

func TestJournalUpdateSavesChanges(t *testing.T) {
	var gotTitle atomic.Value
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/journals/j1", r.URL.Path)
		var params struct {
			Title string `json:"title"`
		}
		require.NoError(t, decodeBody(r, &params))
		gotTitle.Store(params.Title)
		envelope(w, map[string]string{})
	})
	h := NewWellnessHandler(app.backend, app.renderer, app.store)

	router := chi.NewRouter()
	router.Post(RouteJournal+RouteParamID, h.JournalUpdate)

	req := postForm(RouteJournal+"/j1", url.Values{
		"title":   {"Morning pages, revised"},
		"content": {"Slept badly, actually."},
		"date":    {"2026-01-15"},
	})
	signIn(t, req, testUser(), "tok-123")

	rec := app.serve(router, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteJournal, rec.Header().Get("Location"))
	assert.Equal(t, "Morning pages, revised", gotTitle.Load())
}

func TestMoodUpdateValidatesScore(t *testing.T) {
	app := newTestApp(t, nil)
	h := NewWellnessHandler(app.backend, app.renderer, app.store)

	router := chi.NewRouter()
	router.Post(RouteMood+RouteParamID, h.MoodUpdate)

	req := postForm(RouteMood+"/m1", url.Values{"mood": {"42"}})
	signIn(t, req, testUser(), "tok-123")

	rec := app.serve(router, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteMood, rec.Header().Get("Location"))
}

func TestHabitUpdateSavesChanges(t *testing.T) {
	var gotFrequency atomic.Value
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/habits/h1", r.URL.Path)
		var params struct {
			Frequency string `json:"frequency"`
		}
		require.NoError(t, decodeBody(r, &params))
		gotFrequency.Store(params.Frequency)
		envelope(w, map[string]string{})
	})
	h := NewWellnessHandler(app.backend, app.renderer, app.store)

	router := chi.NewRouter()
	router.Post(RouteHabits+RouteParamID, h.HabitUpdate)

	req := postForm(RouteHabits+"/h1", url.Values{"name": {"Meditate"}, "frequency": {"weekly"}})
	signIn(t, req, testUser(), "tok-123")

	rec := app.serve(router, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "weekly", gotFrequency.Load())
}

func TestExerciseUpdateRequiresPositiveDuration(t *testing.T) {
	app := newTestApp(t, nil)
	h := NewWellnessHandler(app.backend, app.renderer, app.store)

	router := chi.NewRouter()
	router.Post(RouteExercises+RouteParamID, h.ExerciseUpdate)

	req := postForm(RouteExercises+"/e1", url.Values{"type": {"run"}, "duration": {"0"}})
	signIn(t, req, testUser(), "tok-123")

	rec := app.serve(router, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteExercises, rec.Header().Get("Location"))
}

func TestReminderUpdateSavesChanges(t *testing.T) {
	var calls atomic.Int32
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/reminders/r1", r.URL.Path)
		calls.Add(1)
		envelope(w, map[string]string{})
	})
	h := NewWellnessHandler(app.backend, app.renderer, app.store)

	router := chi.NewRouter()
	router.Post(RouteReminders+RouteParamID, h.ReminderUpdate)

	req := postForm(RouteReminders+"/r1", url.Values{"title": {"Drink water"}, "time": {"14:00"}})
	signIn(t, req, testUser(), "tok-123")

	rec := app.serve(router, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteReminders, rec.Header().Get("Location"))
	assert.EqualValues(t, 1, calls.Load())
}
