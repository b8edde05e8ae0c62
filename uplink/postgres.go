package uplink

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jlpinilla/MediaEdu/data"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	logger "github.com/sirupsen/logrus"
)

// Postgres writes each snapshot as one row in the readings table.
type Postgres struct {
	db     *sql.DB
	target Target
}

const pgTimeout = 10 * time.Second

func (p *Postgres) Connect(t Target) error {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s sslmode=disable",
		t.Host, t.User, t.Secret, t.Database)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pgTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping db: %w", err)
	}

	p.db = db
	p.target = t
	logger.WithFields(t.Fields()).Info("Uplink db connected")
	return nil
}

func (p *Postgres) Send(s data.Snapshot) error {
	ctx, cancel := context.WithTimeout(context.Background(), pgTimeout)
	defer cancel()

	_, err := p.db.ExecContext(ctx,
		`INSERT INTO readings
		   (id, device, site, temperature, humidity, sound_db, air_quality, light_lux, sensor_ok, taken_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		uuid.NewString(), p.target.Label, p.target.Site,
		s.TempC, s.Humidity, s.SoundDB, s.AirQuality, s.LightLux, s.TempHumOK, s.At)
	if err != nil {
		return fmt.Errorf("insert reading: %w", err)
	}
	return nil
}

func (p *Postgres) Close() {
	if p.db != nil {
		_ = p.db.Close()
		p.db = nil
	}
}
