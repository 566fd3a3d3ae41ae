package server

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileRoundTrip(t *testing.T) {
	app := testServer(t)
	token := signupUser(t, app, "profile_ivy")

	resp, body := doJSON(t, app, "PUT", "/api/users/me", token, map[string]string{
		"first_name": "Ivy",
		"bio":        "building things",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, app, "GET", "/api/users/me", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Ivy", user["first_name"])

	profile, ok := user["profile"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "building things", profile["bio"])
}

func TestUpdateProfileRejectsLongBio(t *testing.T) {
	app := testServer(t)
	token := signupUser(t, app, "profile_jack")

	long := make([]byte, 200)
	for i := range long {
		long[i] = 'x'
	}
	resp, _ := doJSON(t, app, "PUT", "/api/users/me", token, map[string]string{
		"bio": string(long),
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestFollowToggle(t *testing.T) {
	app := testServer(t)
	follower := signupUser(t, app, "follow_kay")
	signupUser(t, app, "follow_liam")

	resp, body := doJSON(t, app, "POST", "/api/users/follow_liam/follow", follower, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["following"])

	// Toggling again unfollows.
	resp, body = doJSON(t, app, "POST", "/api/users/follow_liam/follow", follower, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["following"])
}

func TestFollowShowsUpInProfileCounts(t *testing.T) {
	app := testServer(t)
	follower := signupUser(t, app, "count_mia")
	signupUser(t, app, "count_noah")

	resp, _ := doJSON(t, app, "POST", "/api/users/count_noah/follow", follower, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, app, "GET", "/api/users/count_noah", follower, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["followers_count"])
	assert.Equal(t, true, body["is_following"])

	resp, followers := doJSON(t, app, "GET", "/api/users/count_noah/followers", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	list, ok := followers["users"].([]any)
	require.True(t, ok)
	require.Len(t, list, 1)
}

func TestProfileIsReadableWithoutToken(t *testing.T) {
	app := testServer(t)
	signupUser(t, app, "public_omar")

	resp, body := doJSON(t, app, "GET", "/api/users/public_omar", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "public_omar", user["username"])
	// No viewer, so the follow flag defaults off.
	assert.Equal(t, false, body["is_following"])

	// The literal "me" path still requires a token.
	resp, _ = doJSON(t, app, "GET", "/api/users/me", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestUnknownUserIs404(t *testing.T) {
	app := testServer(t)

	resp, _ := doJSON(t, app, "GET", "/api/users/no_such_user", "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
