package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/smartstore/backend/internal/models"
)

func TestListUsers(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("alice", false)
	env.createUser("root", true)

	rec, c := env.doJSONRequest(http.MethodGet, "/api/users", nil)
	require.NoError(t, env.U.ListUsers(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var users []models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 2)
	require.NotContains(t, rec.Body.String(), "password")
}

func TestDeleteUser(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("alice", false)
	env.createProduct("LAMP-1", "Desk Lamp", 2500, 5)
	_, err := env.Store.AddToCart(t.Context(), user.ID, "LAMP-1", 1)
	require.NoError(t, err)

	rec, c := env.doJSONRequest(http.MethodDelete, "/api/users/alice", nil)
	c.SetParamNames("username")
	c.SetParamValues("alice")
	require.NoError(t, env.U.DeleteUser(c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	var count int64
	env.DB.Model(&models.User{}).Count(&count)
	require.Zero(t, count)

	_, c = env.doJSONRequest(http.MethodDelete, "/api/users/alice", nil)
	c.SetParamNames("username")
	c.SetParamValues("alice")
	require.Equal(t, http.StatusNotFound, httpCode(t, env.U.DeleteUser(c)))
}

func TestCategories(t *testing.T) {
	env := newTestEnv(t)
	h := &CategoryHandler{Store: env.Store}

	rec, c := env.doJSONRequest(http.MethodPost, "/api/categories", map[string]string{"name": "Lighting"})
	require.NoError(t, h.CreateCategory(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	_, c = env.doJSONRequest(http.MethodPost, "/api/categories", map[string]string{"name": "Lighting"})
	require.Error(t, h.CreateCategory(c))

	rec, c = env.doJSONRequest(http.MethodGet, "/api/categories", nil)
	require.NoError(t, h.ListCategories(c))

	var cats []models.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cats))
	require.Len(t, cats, 1)
	require.Equal(t, "Lighting", cats[0].Name)
}
