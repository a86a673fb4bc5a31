package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"propiedades-api/models"
	"propiedades-api/utils"
)

// Store persists normalized properties in PostgreSQL. database/sql pools
// connections; every query acquires and releases one with scoped lifetime.
type Store struct {
	db     *sql.DB
	logger *utils.Logger
}

// NewStore opens a connection to PostgreSQL, waits for it to come up, runs
// schema migrations, and returns a ready-to-use Store.
func NewStore(dsn string, logger *utils.Logger) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	retry := &utils.RetryConfig{MaxAttempts: 5, BaseDelay: 2 * time.Second, Logger: logger}
	if err := retry.Do("postgres ping", db.Ping); err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	s := &Store{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS propiedades (
			id                  SERIAL PRIMARY KEY,
			source_id           TEXT          UNIQUE NOT NULL,
			price_usd           NUMERIC(12,2),
			expensas_ars        NUMERIC(10,2),
			barrio              VARCHAR(50),
			address             TEXT,
			ambientes           INT           NOT NULL DEFAULT 0,
			dormitorios         INT           NOT NULL DEFAULT 0,
			banos               INT           NOT NULL DEFAULT 0,
			superficie_total_m2 INT,
			cocheras            INT           NOT NULL DEFAULT 0,
			description         TEXT,
			link                TEXT,
			scrap_date          TIMESTAMPTZ
		);

		CREATE INDEX IF NOT EXISTS idx_propiedades_barrio ON propiedades(barrio);
		CREATE INDEX IF NOT EXISTS idx_propiedades_price  ON propiedades(price_usd);
	`)
	return err
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// SplitLoadable separates records that may be persisted from rejects.
// A record lacking a resolved price or barrio is never stored.
func SplitLoadable(props []*models.Property) (valid []*models.Property, dropped int) {
	valid = make([]*models.Property, 0, len(props))
	for _, p := range props {
		if p.PriceUSD == nil || p.Barrio == nil {
			dropped++
			continue
		}
		valid = append(valid, p)
	}
	return valid, dropped
}

// LoadBatch applies the load policy to a transformed batch: rejects are
// counted and dropped, survivors are inserted in fixed-size batches. Each
// batch commits atomically; a failing batch rolls back and aborts the
// remaining batches.
func (s *Store) LoadBatch(props []*models.Property, batchSize int) (inserted, dropped int, err error) {
	valid, dropped := SplitLoadable(props)
	if dropped > 0 {
		s.logger.Info("[load] dropped %d records with missing price or barrio", dropped)
	}
	if batchSize <= 0 {
		batchSize = 1000
	}

	for i := 0; i < len(valid); i += batchSize {
		end := i + batchSize
		if end > len(valid) {
			end = len(valid)
		}
		n, err := s.insertBatch(valid[i:end])
		if err != nil {
			s.logger.Error("[load] batch starting at %d failed and was rolled back: %v", i, err)
			return inserted, dropped, err
		}
		inserted += n
		s.logger.Info("[load] batch of %d records inserted", n)
	}

	return inserted, dropped, nil
}

func (s *Store) insertBatch(batch []*models.Property) (int, error) {
	const cols = 13
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cols)

	for idx, p := range batch {
		base := idx * cols
		placeholders := make([]string, cols)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			p.SourceID, p.PriceUSD, p.ExpensasARS, p.Barrio, p.Address,
			p.Ambientes, p.Dormitorios, p.Banos, p.SuperficieTotalM2,
			p.Cocheras, p.Description, p.Link, p.ScrapDate)
	}

	query := fmt.Sprintf(`
		INSERT INTO propiedades (
			source_id, price_usd, expensas_ars, barrio, address,
			ambientes, dormitorios, banos, superficie_total_m2,
			cocheras, description, link, scrap_date
		) VALUES %s
		ON CONFLICT (source_id) DO NOTHING
	`, strings.Join(valueStrings, ","))

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("postgres: begin: %w", err)
	}

	res, err := tx.Exec(query, valueArgs...)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("postgres: insert batch: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("postgres: commit batch: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return len(batch), nil
	}
	return int(n), nil
}

const propertyColumns = `
	id, source_id, price_usd, expensas_ars, barrio, address,
	ambientes, dormitorios, banos, superficie_total_m2,
	cocheras, description, link, scrap_date
`

// List fetches stored properties with optional filters and pagination,
// ordered by id.
func (s *Store) List(filter ListFilter) ([]*models.Property, error) {
	query := "SELECT " + propertyColumns + " FROM propiedades WHERE 1=1"
	var params []interface{}

	if filter.Barrio != nil {
		params = append(params, *filter.Barrio)
		query += fmt.Sprintf(" AND barrio = $%d", len(params))
	}
	if filter.AmbientesMin != nil {
		params = append(params, *filter.AmbientesMin)
		query += fmt.Sprintf(" AND ambientes >= $%d", len(params))
	}
	if filter.PriceMaxUSD != nil {
		params = append(params, *filter.PriceMaxUSD)
		query += fmt.Sprintf(" AND price_usd <= $%d", len(params))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	params = append(params, limit)
	query += fmt.Sprintf(" ORDER BY id LIMIT $%d", len(params))
	params = append(params, filter.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(params))

	rows, err := s.db.Query(query, params...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list: %w", err)
	}
	defer rows.Close()

	var props []*models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		props = append(props, p)
	}
	return props, rows.Err()
}

// GetByID fetches one property or ErrNotFound.
func (s *Store) GetByID(id int64) (*models.Property, error) {
	row := s.db.QueryRow("SELECT "+propertyColumns+" FROM propiedades WHERE id = $1", id)
	p, err := scanProperty(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a single property and returns its generated id.
// A unique-constraint violation on source_id surfaces as ErrDuplicate.
func (s *Store) Create(p *models.Property) (int64, error) {
	var id int64
	err := s.db.QueryRow(`
		INSERT INTO propiedades (
			source_id, price_usd, expensas_ars, barrio, address,
			ambientes, dormitorios, banos, superficie_total_m2,
			cocheras, description, link, scrap_date
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING id
	`, p.SourceID, p.PriceUSD, p.ExpensasARS, p.Barrio, p.Address,
		p.Ambientes, p.Dormitorios, p.Banos, p.SuperficieTotalM2,
		p.Cocheras, p.Description, p.Link, p.ScrapDate).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return 0, ErrDuplicate
		}
		return 0, fmt.Errorf("postgres: create: %w", err)
	}
	return id, nil
}

// Update applies the non-nil fields of u to the stored property and returns
// the updated row, or ErrNotFound.
func (s *Store) Update(id int64, u *models.PropertyUpdate) (*models.Property, error) {
	var sets []string
	var params []interface{}

	if u.PriceUSD != nil {
		params = append(params, *u.PriceUSD)
		sets = append(sets, fmt.Sprintf("price_usd = $%d", len(params)))
	}
	if u.ExpensasARS != nil {
		params = append(params, *u.ExpensasARS)
		sets = append(sets, fmt.Sprintf("expensas_ars = $%d", len(params)))
	}
	if u.Description != nil {
		params = append(params, *u.Description)
		sets = append(sets, fmt.Sprintf("description = $%d", len(params)))
	}
	if len(sets) == 0 {
		return s.GetByID(id)
	}

	params = append(params, id)
	query := fmt.Sprintf("UPDATE propiedades SET %s WHERE id = $%d",
		strings.Join(sets, ", "), len(params))

	res, err := s.db.Exec(query, params...)
	if err != nil {
		return nil, fmt.Errorf("postgres: update: %w", err)
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return nil, ErrNotFound
	}

	return s.GetByID(id)
}

// Delete removes one property or returns ErrNotFound.
func (s *Store) Delete(id int64) error {
	res, err := s.db.Exec("DELETE FROM propiedades WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("postgres: delete: %w", err)
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// BarrioStats aggregates price statistics per barrio, including the average
// price per square meter.
func (s *Store) BarrioStats() ([]models.BarrioStats, error) {
	rows, err := s.db.Query(`
		SELECT
			barrio,
			COUNT(*) AS cantidad_propiedades,
			ROUND(AVG(price_usd), 2) AS precio_promedio_usd,
			ROUND(MIN(price_usd), 2) AS precio_min_usd,
			ROUND(MAX(price_usd), 2) AS precio_max_usd,
			ROUND(AVG(price_usd / superficie_total_m2), 2) AS precio_promedio_m2_usd
		FROM propiedades
		WHERE superficie_total_m2 IS NOT NULL AND superficie_total_m2 > 0
		GROUP BY barrio
		ORDER BY barrio
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: barrio stats: %w", err)
	}
	defer rows.Close()

	var stats []models.BarrioStats
	for rows.Next() {
		var st models.BarrioStats
		if err := rows.Scan(&st.Barrio, &st.CantidadPropiedades, &st.PrecioPromedioUSD,
			&st.PrecioMinUSD, &st.PrecioMaxUSD, &st.PrecioPromedioM2USD); err != nil {
			return nil, fmt.Errorf("postgres: scan barrio stats: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// MarketEvolution aggregates listing counts and average prices per scrape
// date, showing how the market moved across scraping runs.
func (s *Store) MarketEvolution() ([]models.MarketSnapshot, error) {
	rows, err := s.db.Query(`
		SELECT
			scrap_date,
			COUNT(*) AS cantidad_propiedades,
			ROUND(AVG(price_usd), 2) AS precio_promedio_usd
		FROM propiedades
		WHERE scrap_date IS NOT NULL
		GROUP BY scrap_date
		ORDER BY scrap_date
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: market evolution: %w", err)
	}
	defer rows.Close()

	var snapshots []models.MarketSnapshot
	for rows.Next() {
		var snap models.MarketSnapshot
		if err := rows.Scan(&snap.ScrapDate, &snap.CantidadPropiedades, &snap.PrecioPromedioUSD); err != nil {
			return nil, fmt.Errorf("postgres: scan market evolution: %w", err)
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

// SimilarAveragePrice averages stored prices over the comparable window.
// Returns nil when no comparable row exists.
func (s *Store) SimilarAveragePrice(barrio string, ambMin, ambMax, supMin, supMax int) (*float64, error) {
	var avg sql.NullFloat64
	err := s.db.QueryRow(`
		SELECT AVG(price_usd)
		FROM propiedades
		WHERE barrio = $1
		  AND ambientes BETWEEN $2 AND $3
		  AND superficie_total_m2 BETWEEN $4 AND $5
		  AND price_usd IS NOT NULL
	`, barrio, ambMin, ambMax, supMin, supMax).Scan(&avg)
	if err != nil {
		return nil, fmt.Errorf("postgres: similar average: %w", err)
	}
	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProperty(row rowScanner) (*models.Property, error) {
	var (
		p          models.Property
		price      sql.NullFloat64
		expensas   sql.NullFloat64
		barrio     sql.NullString
		address    sql.NullString
		superficie sql.NullInt64
		desc       sql.NullString
		link       sql.NullString
		scrapDate  sql.NullTime
	)

	err := row.Scan(&p.ID, &p.SourceID, &price, &expensas, &barrio, &address,
		&p.Ambientes, &p.Dormitorios, &p.Banos, &superficie,
		&p.Cocheras, &desc, &link, &scrapDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("postgres: scan property: %w", err)
	}

	if price.Valid {
		p.PriceUSD = &price.Float64
	}
	if expensas.Valid {
		p.ExpensasARS = &expensas.Float64
	}
	if barrio.Valid {
		p.Barrio = &barrio.String
	}
	if superficie.Valid {
		v := int(superficie.Int64)
		p.SuperficieTotalM2 = &v
	}
	if scrapDate.Valid {
		p.ScrapDate = &scrapDate.Time
	}
	p.Address = address.String
	p.Description = desc.String
	p.Link = link.String

	return &p, nil
}
