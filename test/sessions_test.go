//go:build integration_test || all_tests

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/2beens/gymsessions/internal/middleware"
	"github.com/2beens/gymsessions/internal/workout/phase"
	"github.com/2beens/gymsessions/internal/workout/results"
	"github.com/2beens/gymsessions/internal/workout/sessions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) do(ctx context.Context, method, path string, memberID int, body any) (int, []byte) {
	t := s.T()

	var reader io.Reader = http.NoBody
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderAppSecret, testAppSecret)
	req.Header.Set(middleware.HeaderMemberID, strconv.Itoa(memberID))

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, respBytes
}

func (s *IntegrationTestSuite) TestSessions_StrengthWorkout() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()
	const member = 1

	status, body := s.do(ctx, http.MethodPost, "/sessions/start", member, sessions.StartParams{WorkoutID: 1})
	require.Equal(t, http.StatusCreated, status, string(body))
	var started sessions.StartResponse
	require.NoError(t, json.Unmarshal(body, &started))
	require.NotEmpty(t, started.ID)

	status, _ = s.do(ctx, http.MethodPost, "/sessions/start", member, sessions.StartParams{WorkoutID: 2})
	assert.Equal(t, http.StatusConflict, status)

	status, body = s.do(ctx, http.MethodGet, "/sessions/active", member, nil)
	require.Equal(t, http.StatusOK, status)
	var active sessions.Session
	require.NoError(t, json.Unmarshal(body, &active))
	assert.Equal(t, started.ID, active.ID)
	require.Len(t, active.Exercises, 2)
	assert.Len(t, active.Exercises[0].Sets, 3)

	// someone else's session
	status, _ = s.do(ctx, http.MethodGet, "/sessions/"+started.ID, 99, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = s.do(ctx, http.MethodPut, "/sessions/"+started.ID+"/exercises/11/sets/1/complete", member, map[string]int{"actualReps": 8})
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"ok": true}`, string(body))

	status, body = s.do(ctx, http.MethodPut, "/sessions/"+started.ID+"/exercises/11/sets/1/complete", member, map[string]int{"actualReps": 9})
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"ok": false}`, string(body))

	status, body = s.do(ctx, http.MethodPut, "/sessions/"+started.ID+"/pause", member, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"ok": true}`, string(body))
	status, body = s.do(ctx, http.MethodPut, "/sessions/"+started.ID+"/resume", member, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"ok": true}`, string(body))

	status, _ = s.do(ctx, http.MethodPost, "/sessions/"+started.ID+"/actions", member, nil)
	assert.Equal(t, http.StatusConflict, status, "untyped workouts have no phase")

	status, _ = s.do(ctx, http.MethodPost, "/sessions/"+started.ID+"/complete", member, results.CompletionPayload{Rating: 9})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = s.do(ctx, http.MethodPost, "/sessions/"+started.ID+"/complete", member, results.CompletionPayload{Rating: 5, Mood: "great"})
	require.Equal(t, http.StatusCreated, status, string(body))
	var completed sessions.CompleteResponse
	require.NoError(t, json.Unmarshal(body, &completed))

	status, _ = s.do(ctx, http.MethodPost, "/sessions/"+started.ID+"/complete", member, results.CompletionPayload{})
	assert.Equal(t, http.StatusConflict, status)

	status, body = s.do(ctx, http.MethodGet, fmt.Sprintf("/results/%d", completed.ResultID), member, nil)
	require.Equal(t, http.StatusOK, status)
	var res results.Result
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, started.ID, res.SessionID)
	assert.Equal(t, "0/2 exercises", res.Score)
	assert.Equal(t, 1, res.TotalSets)
	assert.Equal(t, "great", res.Mood)

	status, _ = s.do(ctx, http.MethodGet, fmt.Sprintf("/results/%d", completed.ResultID), 99, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = s.do(ctx, http.MethodGet, "/sessions/history?size=5", member, nil)
	require.Equal(t, http.StatusOK, status)
	var history []*sessions.Session
	require.NoError(t, json.Unmarshal(body, &history))
	require.Len(t, history, 1)
	assert.Equal(t, sessions.StatusCompleted, history[0].Status)

	status, _ = s.do(ctx, http.MethodGet, "/sessions/active", member, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func (s *IntegrationTestSuite) TestSessions_AMRAP() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()
	const member = 2

	status, body := s.do(ctx, http.MethodPost, "/sessions/start", member, sessions.StartParams{WorkoutID: 2})
	require.Equal(t, http.StatusCreated, status, string(body))
	var started sessions.StartResponse
	require.NoError(t, json.Unmarshal(body, &started))

	var current phase.Phase
	for i := 0; i < 4; i++ {
		status, body = s.do(ctx, http.MethodPost, "/sessions/"+started.ID+"/actions", member, nil)
		require.Equal(t, http.StatusOK, status, string(body))
		require.NoError(t, json.Unmarshal(body, &current))
	}
	assert.Equal(t, phase.TypeAMRAP, current.Type)
	assert.Equal(t, 1, current.RoundsCompleted)
	assert.Equal(t, 102, current.ExerciseID)

	status, body = s.do(ctx, http.MethodGet, "/sessions/"+started.ID+"/phase", member, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &current))
	assert.Equal(t, 1, current.ExerciseIndex)

	status, body = s.do(ctx, http.MethodPost, "/sessions/"+started.ID+"/complete", member, results.CompletionPayload{IsPublic: true})
	require.Equal(t, http.StatusCreated, status, string(body))
	var completed sessions.CompleteResponse
	require.NoError(t, json.Unmarshal(body, &completed))

	// public results are visible to everyone
	status, body = s.do(ctx, http.MethodGet, fmt.Sprintf("/results/%d", completed.ResultID), 99, nil)
	require.Equal(t, http.StatusOK, status)
	var res results.Result
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, "1 rounds + 1", res.Score)
	assert.Equal(t, phase.TypeAMRAP, res.WorkoutType)
}

func (s *IntegrationTestSuite) TestSessions_Abandon() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()
	const member = 3

	status, body := s.do(ctx, http.MethodPost, "/sessions/start", member, sessions.StartParams{WorkoutID: 1})
	require.Equal(t, http.StatusCreated, status, string(body))
	var started sessions.StartResponse
	require.NoError(t, json.Unmarshal(body, &started))

	status, body = s.do(ctx, http.MethodDelete, "/sessions/"+started.ID, member, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"ok": true}`, string(body))

	status, body = s.do(ctx, http.MethodDelete, "/sessions/"+started.ID, member, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"ok": false}`, string(body))

	status, _ = s.do(ctx, http.MethodPost, "/sessions/start", member, sessions.StartParams{WorkoutID: 404})
	assert.Equal(t, http.StatusNotFound, status)
}
