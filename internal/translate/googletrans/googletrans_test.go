package googletrans

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTranslateParsesSegments(t *testing.T) {
	var gotSL, gotTL, gotQ string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSL = r.URL.Query().Get("sl")
		gotTL = r.URL.Query().Get("tl")
		gotQ = r.URL.Query().Get("q")
		_, _ = w.Write([]byte(`[[["What is bail?","ज़मानत क्या है?",null,null,3]],null,"hi"]`))
	}))
	defer srv.Close()

	tr := New(srv.URL)
	got, err := tr.Translate(context.Background(), "ज़मानत क्या है?", "hi", "en")
	require.NoError(t, err)
	require.Equal(t, "What is bail?", got)
	require.Equal(t, "hi", gotSL)
	require.Equal(t, "en", gotTL)
	require.Equal(t, "ज़मानत क्या है?", gotQ)
}

func TestTranslateJoinsMultipleSegments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[[["First sentence. ","x"],["Second sentence.","y"]],null,"en"]`))
	}))
	defer srv.Close()

	tr := New(srv.URL)
	got, err := tr.Translate(context.Background(), "text", "en", "hi")
	require.NoError(t, err)
	require.Equal(t, "First sentence. Second sentence.", got)
}

func TestTranslateEmptyTextPassesThrough(t *testing.T) {
	tr := New("http://unused.invalid")
	got, err := tr.Translate(context.Background(), "  ", "hi", "en")
	require.NoError(t, err)
	require.Equal(t, "  ", got)
}

func TestTranslateSurfacesStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	tr := New(srv.URL)
	_, err := tr.Translate(context.Background(), "text", "hi", "en")
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 403")
}

func TestTranslateRejectsMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"unexpected":"shape"}`))
	}))
	defer srv.Close()

	tr := New(srv.URL)
	_, err := tr.Translate(context.Background(), "text", "hi", "en")
	require.Error(t, err)
}
