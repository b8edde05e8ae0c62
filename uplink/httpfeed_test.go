package uplink

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/jlpinilla/MediaEdu/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFeedSend(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
	}))
	defer srv.Close()

	f := &HTTPFeed{BaseURL: srv.URL}
	require.NoError(t, f.Connect(Target{Host: "ignored", User: "monitor", Secret: "pin", Site: "aula 21", Label: "MediaEdu-EB123456"}))

	snap := data.Snapshot{
		TempC: 21.5, Humidity: 45, SoundDB: 52.5, AirQuality: 130, LightLux: 300,
		TempHumOK: true,
		At:        time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
	}
	require.NoError(t, f.Send(snap))

	assert.Equal(t, "aula 21", got.Get("site"))
	assert.Equal(t, "MediaEdu-EB123456", got.Get("device"))
	assert.Equal(t, "21.5", got.Get("tempc"))
	assert.Equal(t, "2024-05-01+10:30:00", got.Get("dateutc"))
}

func TestHTTPFeedRejectsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	f := &HTTPFeed{BaseURL: srv.URL}
	require.NoError(t, f.Connect(Target{}))
	assert.Error(t, f.Send(data.Snapshot{}))
}

func TestLogStubAlwaysSucceeds(t *testing.T) {
	l := &Log{}
	require.NoError(t, l.Connect(Target{Label: "node"}))
	require.NoError(t, l.Send(data.Snapshot{TempC: 20}))
	l.Close()
}
