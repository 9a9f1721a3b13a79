package overrides

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"brightspace-helper/internal/components/assert"
	"brightspace-helper/internal/components/chrono"
	"brightspace-helper/internal/whatif"

	_ "embed"
)

//go:embed schema.sql
var Schema string

// SQLStore keeps overrides as json in a sqlite or libsql database.
type SQLStore struct {
	db   *sql.DB
	time chrono.TimeAPI
}

// NewSQLStore creates the overrides table if it is missing.
func NewSQLStore(ctx context.Context, db *sql.DB, time chrono.TimeAPI) (SQLStore, error) {
	assert.NotNil(db)
	assert.NotNil(time)

	_, err := db.ExecContext(ctx, Schema)
	if err != nil {
		return SQLStore{}, fmt.Errorf("create overrides table: %w", err)
	}
	return SQLStore{db: db, time: time}, nil
}

func (s SQLStore) Load(ctx context.Context, courseId string) (whatif.Overrides, error) {
	var data string
	err := s.db.QueryRowContext(
		ctx,
		"select data from overrides where course_id = ?",
		courseId,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return whatif.Overrides{}, nil
	}
	if err != nil {
		return whatif.Overrides{}, err
	}

	var out whatif.Overrides
	err = json.Unmarshal([]byte(data), &out)
	if err != nil {
		return whatif.Overrides{}, fmt.Errorf("decode overrides of %s: %w", courseId, err)
	}
	return out, nil
}

func (s SQLStore) Save(ctx context.Context, courseId string, overrides whatif.Overrides) error {
	data, err := json.Marshal(overrides)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(
		ctx,
		`insert into overrides(course_id, data, updated_at) values (?, ?, ?)
		on conflict (course_id) do update set data = excluded.data, updated_at = excluded.updated_at`,
		courseId,
		string(data),
		s.time.Now().Unix(),
	)
	return err
}
