package registrar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rdhub/rdhub/backend/go-services/internal/resource"
	"github.com/stretchr/testify/require"
)

func TestRegister_SendsDOIPayload(t *testing.T) {
	var got doiPayload
	var user, pass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/dois", r.URL.Path)
		user, pass, _ = r.BasicAuth()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := New(srv.URL, "GFZ.RDHUB", "secret")
	res := &resource.Resource{
		Title:           "Seismic Survey 2024",
		Publisher:       "GFZ Data Services",
		PublicationYear: 2024,
		Creators:        []resource.Creator{{Name: "Weber, M."}},
	}
	err := c.Register(context.Background(), "10.5880/gfz.2024.001", res, "https://data.example.org/landing/seismic-survey-2024")
	require.NoError(t, err)
	require.Equal(t, "GFZ.RDHUB", user)
	require.Equal(t, "secret", pass)
	require.Equal(t, "dois", got.Data.Type)
	require.Equal(t, "10.5880/gfz.2024.001", got.Data.Attributes.DOI)
	require.Equal(t, "publish", got.Data.Attributes.Event)
	require.Equal(t, 2024, got.Data.Attributes.PublicationYear)
}

func TestRegister_SurfacesRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"errors":[{"title":"This DOI has already been taken"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "GFZ.RDHUB", "secret")
	err := c.Register(context.Background(), "10.5880/gfz.2024.001", &resource.Resource{Title: "x"}, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "already been taken")
}
