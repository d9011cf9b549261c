package block

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/gosimple/slug"
	"github.com/lib/pq"
	. "github.com/weberc2/blockfs/pkg/types"
)

// PGDevice stores blocks as rows in a postgres `blocks` table keyed by
// volume and block index. Missing rows read back as zeroes.
type PGDevice struct {
	db         *sql.DB
	volume     string
	blockCount Block
}

func NewPGDevice(db *sql.DB, volume string, blockCount Block) *PGDevice {
	return &PGDevice{db: db, volume: slug.Make(volume), blockCount: blockCount}
}

// OpenEnv connects using the `PG_*` environment variables.
func OpenEnv(volume string, blockCount Block) (*PGDevice, error) {
	db, err := sql.Open(
		"postgres",
		fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			getEnv("PG_HOST", "localhost"),
			getEnv("PG_PORT", "5432"),
			getEnv("PG_USER", "postgres"),
			getEnv("PG_PASS", ""),
			getEnv("PG_DB_NAME", "postgres"),
			getEnv("PG_SSL_MODE", "disable"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("opening postgres database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres database: %w", err)
	}

	return NewPGDevice(db, volume, blockCount), nil
}

func getEnv(env, def string) string {
	x := os.Getenv(env)
	if x == "" {
		return def
	}
	return x
}

func (d *PGDevice) EnsureTable() error {
	if _, err := d.db.Exec(
		"CREATE TABLE IF NOT EXISTS blocks (" +
			"volume TEXT NOT NULL, " +
			"idx BIGINT NOT NULL, " +
			"data BYTEA NOT NULL, " +
			"PRIMARY KEY (volume, idx))",
	); err != nil {
		return fmt.Errorf("creating `blocks` postgres table: %w", pgErr(err))
	}
	return nil
}

// ClearVolume deletes every block belonging to this device's volume.
func (d *PGDevice) ClearVolume() error {
	if _, err := d.db.Exec(
		"DELETE FROM blocks WHERE volume = $1",
		d.volume,
	); err != nil {
		return fmt.Errorf(
			"clearing volume `%s` from `blocks` table: %w",
			d.volume,
			pgErr(err),
		)
	}
	return nil
}

func (d *PGDevice) BlockCount() Block { return d.blockCount }

func (d *PGDevice) ReadBlock(idx Block, p *[BlockSize]byte) error {
	var data []byte
	if err := d.db.QueryRow(
		"SELECT data FROM blocks WHERE volume = $1 AND idx = $2",
		d.volume,
		int64(idx),
	).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			*p = [BlockSize]byte{}
			return nil
		}
		return fmt.Errorf(
			"selecting block `%d` of volume `%s`: %w",
			idx,
			d.volume,
			pgErr(err),
		)
	}
	if Byte(len(data)) != BlockSize {
		return fmt.Errorf(
			"selecting block `%d` of volume `%s`: found `%d` bytes; "+
				"wanted `%d`",
			idx,
			d.volume,
			len(data),
			BlockSize,
		)
	}
	copy(p[:], data)
	return nil
}

func (d *PGDevice) WriteBlock(idx Block, p *[BlockSize]byte) error {
	if _, err := d.db.Exec(
		"INSERT INTO blocks (volume, idx, data) VALUES ($1, $2, $3) "+
			"ON CONFLICT (volume, idx) DO UPDATE SET data = EXCLUDED.data",
		d.volume,
		int64(idx),
		p[:],
	); err != nil {
		return fmt.Errorf(
			"upserting block `%d` of volume `%s`: %w",
			idx,
			d.volume,
			pgErr(err),
		)
	}
	return nil
}

// Flush is a no-op; each statement is committed as it executes.
func (d *PGDevice) Flush() error { return nil }

func (d *PGDevice) Close() error { return d.db.Close() }

// pgErr annotates postgres errors with their condition name.
func pgErr(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Errorf("postgres `%s`: %w", pqErr.Code.Name(), err)
	}
	return err
}
