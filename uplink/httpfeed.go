package uplink

import (
	"fmt"
	"net/http"
	"time"

	"github.com/jlpinilla/MediaEdu/data"

	"github.com/google/go-querystring/query"
	logger "github.com/sirupsen/logrus"
)

// HTTPFeed delivers snapshots as key/value pairs on a GET request, the way
// hobbyist weather feeds take uploads.
type HTTPFeed struct {
	// BaseURL is the feed endpoint, without a query string.
	BaseURL string

	client http.Client
	target Target
}

type feedValues struct {
	Site     string  `url:"site,omitempty"`
	Device   string  `url:"device,omitempty"`
	User     string  `url:"user,omitempty"`
	Key      string  `url:"key,omitempty"`
	Date     string  `url:"dateutc,omitempty"`
	TempC    float64 `url:"tempc"`
	Humidity float64 `url:"humidity"`
	SoundDB  float64 `url:"sounddb"`
	AirIdx   float64 `url:"airquality"`
	LightLux float64 `url:"lightlux"`
}

func (f *HTTPFeed) Connect(t Target) error {
	f.target = t
	f.client = http.Client{Timeout: time.Second * 30}
	return nil
}

func (f *HTTPFeed) Send(s data.Snapshot) error {
	fv := feedValues{
		Site:     f.target.Site,
		Device:   f.target.Label,
		User:     f.target.User,
		Key:      f.target.Secret,
		Date:     s.At.UTC().Format("2006-01-02+15:04:05"),
		TempC:    s.TempC,
		Humidity: s.Humidity,
		SoundDB:  s.SoundDB,
		AirIdx:   s.AirQuality,
		LightLux: s.LightLux,
	}

	vals, _ := query.Values(fv)
	resp, err := f.client.Get(f.BaseURL + "?" + vals.Encode())
	if err != nil {
		return fmt.Errorf("feed GET: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return fmt.Errorf("feed rejected upload HTTP [%v]", resp.Status)
	}
	logger.Infof("Feed accepted upload for [%v]", f.target.Label)
	return nil
}

func (f *HTTPFeed) Close() {}
