package output

import (
	"context"
	"fmt"
	"time"

	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLiteSink is an embedded alternative to Postgres for local runs. It
// implements the same contract against a single database file.
type SQLiteSink struct {
	db *sqlx.DB
}

func NewSQLiteSink(path string) (*SQLiteSink, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("error opening sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error pinging sqlite database: %w", err)
	}

	sink := &SQLiteSink{db: db}
	if err := sink.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return sink, nil
}

func (s *SQLiteSink) createTables() error {
	ddl := `
	CREATE TABLE IF NOT EXISTS routes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		route_id TEXT UNIQUE NOT NULL,
		start_x REAL NOT NULL,
		start_y REAL NOT NULL,
		end_x REAL NOT NULL,
		end_y REAL NOT NULL,
		distance_km REAL NOT NULL,
		route_name TEXT NOT NULL,
		speed_limit REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS vehicles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		vehicle_id TEXT UNIQUE NOT NULL,
		vehicle_type TEXT NOT NULL,
		current_speed REAL NOT NULL,
		max_speed REAL NOT NULL,
		route_id TEXT NOT NULL,
		position_x REAL NOT NULL,
		position_y REAL NOT NULL,
		last_update DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS traffic_samples (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		vehicle_id TEXT NOT NULL,
		vehicle_type TEXT NOT NULL,
		route_id TEXT NOT NULL,
		speed REAL NOT NULL,
		position_x REAL NOT NULL,
		position_y REAL NOT NULL,
		recorded_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS congestion_points (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		route_id TEXT NOT NULL,
		location_x REAL NOT NULL,
		location_y REAL NOT NULL,
		congestion_level TEXT NOT NULL,
		average_speed REAL NOT NULL,
		vehicle_count INTEGER NOT NULL,
		detected_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_traffic_samples_recorded_at ON traffic_samples(recorded_at);
	CREATE INDEX IF NOT EXISTS idx_traffic_samples_route ON traffic_samples(route_id);
	CREATE INDEX IF NOT EXISTS idx_congestion_detected_at ON congestion_points(detected_at);`

	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

func (s *SQLiteSink) InsertRoutes(ctx context.Context, routes []models.Route) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt := `
        INSERT INTO routes (route_id, start_x, start_y, end_x, end_y, distance_km, route_name, speed_limit)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (route_id) DO NOTHING`

	for _, route := range routes {
		_, err = tx.ExecContext(ctx, stmt,
			route.ID,
			route.Start.X,
			route.Start.Y,
			route.End.X,
			route.End.Y,
			route.DistanceKm,
			route.Name,
			route.SpeedLimit,
		)
		if err != nil {
			return fmt.Errorf("failed to insert route %s: %w", route.ID, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteSink) UpsertVehicle(ctx context.Context, vehicle *models.Vehicle) error {
	query := `
        INSERT INTO vehicles (vehicle_id, vehicle_type, current_speed, max_speed, route_id, position_x, position_y, last_update)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (vehicle_id) DO UPDATE SET
            current_speed = excluded.current_speed,
            position_x = excluded.position_x,
            position_y = excluded.position_y,
            last_update = excluded.last_update`

	_, err := s.db.ExecContext(ctx, query,
		vehicle.ID,
		string(vehicle.Type),
		vehicle.CurrentSpeed,
		vehicle.MaxSpeed,
		vehicle.RouteID,
		vehicle.Position.X,
		vehicle.Position.Y,
		vehicle.LastUpdate,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert vehicle %s: %w", vehicle.ID, err)
	}
	return nil
}

func (s *SQLiteSink) AppendTrafficSample(ctx context.Context, sample models.TrafficSample) error {
	query := `
        INSERT INTO traffic_samples (vehicle_id, vehicle_type, route_id, speed, position_x, position_y, recorded_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		sample.VehicleID,
		string(sample.VehicleType),
		sample.RouteID,
		sample.Speed,
		sample.Position.X,
		sample.Position.Y,
		sample.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to append traffic sample for %s: %w", sample.VehicleID, err)
	}
	return nil
}

func (s *SQLiteSink) InsertCongestionPoint(ctx context.Context, point models.CongestionPoint) error {
	query := `
        INSERT INTO congestion_points (route_id, location_x, location_y, congestion_level, average_speed, vehicle_count, detected_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		point.RouteID,
		point.Location.X,
		point.Location.Y,
		string(point.Level),
		point.AverageSpeed,
		point.VehicleCount,
		point.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert congestion point: %w", err)
	}
	return nil
}

func (s *SQLiteSink) RecentTraffic(ctx context.Context, since time.Duration) ([]models.TrafficSample, error) {
	query := `
        SELECT ts.vehicle_id, ts.vehicle_type, ts.route_id, ts.speed,
               ts.position_x, ts.position_y, ts.recorded_at,
               r.route_name, r.speed_limit
        FROM traffic_samples ts
        JOIN routes r ON ts.route_id = r.route_id
        WHERE ts.recorded_at >= ?
        ORDER BY ts.recorded_at DESC`

	rows, err := s.db.QueryContext(ctx, query, time.Now().Add(-since))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch traffic samples: %w", err)
	}
	defer rows.Close()

	var samples []models.TrafficSample
	for rows.Next() {
		var sample models.TrafficSample
		var vehicleType string
		err := rows.Scan(
			&sample.VehicleID,
			&vehicleType,
			&sample.RouteID,
			&sample.Speed,
			&sample.Position.X,
			&sample.Position.Y,
			&sample.Timestamp,
			&sample.RouteName,
			&sample.SpeedLimit,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan traffic sample: %w", err)
		}
		sample.VehicleType = models.VehicleType(vehicleType)
		samples = append(samples, sample)
	}
	return samples, rows.Err()
}

func (s *SQLiteSink) RecentCongestion(ctx context.Context, since time.Duration) ([]models.CongestionPoint, error) {
	query := `
        SELECT cp.route_id, cp.location_x, cp.location_y, cp.congestion_level,
               cp.average_speed, cp.vehicle_count, cp.detected_at, r.route_name
        FROM congestion_points cp
        JOIN routes r ON cp.route_id = r.route_id
        WHERE cp.detected_at >= ?
        ORDER BY cp.detected_at DESC`

	rows, err := s.db.QueryContext(ctx, query, time.Now().Add(-since))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch congestion points: %w", err)
	}
	defer rows.Close()

	var points []models.CongestionPoint
	for rows.Next() {
		var cp models.CongestionPoint
		var level string
		err := rows.Scan(
			&cp.RouteID,
			&cp.Location.X,
			&cp.Location.Y,
			&level,
			&cp.AverageSpeed,
			&cp.VehicleCount,
			&cp.Timestamp,
			&cp.RouteName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan congestion point: %w", err)
		}
		cp.Level = models.CongestionLevel(level)
		points = append(points, cp)
	}
	return points, rows.Err()
}

func (s *SQLiteSink) RouteStatistics(ctx context.Context, window time.Duration) ([]models.RouteStats, error) {
	query := `
        SELECT r.route_id, r.route_name, r.speed_limit,
               AVG(ts.speed) AS avg_speed,
               MIN(ts.speed) AS min_speed,
               MAX(ts.speed) AS max_speed,
               COUNT(*) AS data_points,
               COUNT(DISTINCT ts.vehicle_id) AS unique_vehicles
        FROM routes r
        JOIN traffic_samples ts ON r.route_id = ts.route_id
        WHERE ts.recorded_at >= ?
        GROUP BY r.route_id, r.route_name, r.speed_limit
        ORDER BY avg_speed ASC`

	rows, err := s.db.QueryContext(ctx, query, time.Now().Add(-window))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch route statistics: %w", err)
	}
	defer rows.Close()

	var stats []models.RouteStats
	for rows.Next() {
		var rs models.RouteStats
		err := rows.Scan(
			&rs.RouteID,
			&rs.RouteName,
			&rs.SpeedLimit,
			&rs.AvgSpeed,
			&rs.MinSpeed,
			&rs.MaxSpeed,
			&rs.DataPoints,
			&rs.UniqueVehicles,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan route statistics: %w", err)
		}
		stats = append(stats, rs)
	}
	return stats, rows.Err()
}

func (s *SQLiteSink) PurgeOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := time.Now().Add(-age)

	trafficRes, err := s.db.ExecContext(ctx, "DELETE FROM traffic_samples WHERE recorded_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge traffic samples: %w", err)
	}
	trafficDeleted, _ := trafficRes.RowsAffected()

	congestionRes, err := s.db.ExecContext(ctx, "DELETE FROM congestion_points WHERE detected_at < ?", cutoff)
	if err != nil {
		return trafficDeleted, fmt.Errorf("failed to purge congestion points: %w", err)
	}
	congestionDeleted, _ := congestionRes.RowsAffected()

	return trafficDeleted + congestionDeleted, nil
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
