package output

import (
	"context"
	"fmt"
	"time"

	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresSink struct {
	pool *pgxpool.Pool
}

func NewPostgresSink(ctx context.Context, config *models.DatabaseConfig) (*PostgresSink, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode,
	)

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	sink := &PostgresSink{pool: pool}
	if err := sink.createTables(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return sink, nil
}

func (p *PostgresSink) createTables(ctx context.Context) error {
	ddl := `
	CREATE TABLE IF NOT EXISTS routes (
		id SERIAL PRIMARY KEY,
		route_id VARCHAR(50) UNIQUE NOT NULL,
		start_x DOUBLE PRECISION NOT NULL,
		start_y DOUBLE PRECISION NOT NULL,
		end_x DOUBLE PRECISION NOT NULL,
		end_y DOUBLE PRECISION NOT NULL,
		distance_km DOUBLE PRECISION NOT NULL,
		route_name VARCHAR(100) NOT NULL,
		speed_limit DOUBLE PRECISION NOT NULL
	);

	CREATE TABLE IF NOT EXISTS vehicles (
		id SERIAL PRIMARY KEY,
		vehicle_id VARCHAR(50) UNIQUE NOT NULL,
		vehicle_type VARCHAR(20) NOT NULL,
		current_speed DOUBLE PRECISION NOT NULL,
		max_speed DOUBLE PRECISION NOT NULL,
		route_id VARCHAR(50) NOT NULL,
		position_x DOUBLE PRECISION NOT NULL,
		position_y DOUBLE PRECISION NOT NULL,
		last_update TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS traffic_samples (
		id SERIAL PRIMARY KEY,
		vehicle_id VARCHAR(50) NOT NULL,
		vehicle_type VARCHAR(20) NOT NULL,
		route_id VARCHAR(50) NOT NULL,
		speed DOUBLE PRECISION NOT NULL,
		position_x DOUBLE PRECISION NOT NULL,
		position_y DOUBLE PRECISION NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS congestion_points (
		id SERIAL PRIMARY KEY,
		route_id VARCHAR(50) NOT NULL,
		location_x DOUBLE PRECISION NOT NULL,
		location_y DOUBLE PRECISION NOT NULL,
		congestion_level VARCHAR(10) NOT NULL,
		average_speed DOUBLE PRECISION NOT NULL,
		vehicle_count INTEGER NOT NULL,
		detected_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_traffic_samples_recorded_at ON traffic_samples(recorded_at);
	CREATE INDEX IF NOT EXISTS idx_traffic_samples_route ON traffic_samples(route_id);
	CREATE INDEX IF NOT EXISTS idx_vehicles_route ON vehicles(route_id);
	CREATE INDEX IF NOT EXISTS idx_congestion_detected_at ON congestion_points(detected_at);`

	if _, err := p.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

func (p *PostgresSink) InsertRoutes(ctx context.Context, routes []models.Route) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	stmt := `
        INSERT INTO routes (route_id, start_x, start_y, end_x, end_y, distance_km, route_name, speed_limit)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (route_id) DO NOTHING`

	for _, route := range routes {
		_, err = tx.Exec(ctx, stmt,
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

	return tx.Commit(ctx)
}

func (p *PostgresSink) UpsertVehicle(ctx context.Context, vehicle *models.Vehicle) error {
	query := `
        INSERT INTO vehicles (vehicle_id, vehicle_type, current_speed, max_speed, route_id, position_x, position_y, last_update)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (vehicle_id) DO UPDATE SET
            current_speed = EXCLUDED.current_speed,
            position_x = EXCLUDED.position_x,
            position_y = EXCLUDED.position_y,
            last_update = EXCLUDED.last_update`

	_, err := p.pool.Exec(ctx, query,
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

func (p *PostgresSink) AppendTrafficSample(ctx context.Context, sample models.TrafficSample) error {
	query := `
        INSERT INTO traffic_samples (vehicle_id, vehicle_type, route_id, speed, position_x, position_y, recorded_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := p.pool.Exec(ctx, query,
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

func (p *PostgresSink) InsertCongestionPoint(ctx context.Context, point models.CongestionPoint) error {
	query := `
        INSERT INTO congestion_points (route_id, location_x, location_y, congestion_level, average_speed, vehicle_count, detected_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := p.pool.Exec(ctx, query,
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

func (p *PostgresSink) RecentTraffic(ctx context.Context, since time.Duration) ([]models.TrafficSample, error) {
	query := `
        SELECT ts.vehicle_id, ts.vehicle_type, ts.route_id, ts.speed,
               ts.position_x, ts.position_y, ts.recorded_at,
               r.route_name, r.speed_limit
        FROM traffic_samples ts
        JOIN routes r ON ts.route_id = r.route_id
        WHERE ts.recorded_at >= $1
        ORDER BY ts.recorded_at DESC`

	rows, err := p.pool.Query(ctx, query, time.Now().Add(-since))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch traffic samples: %w", err)
	}
	defer rows.Close()

	var samples []models.TrafficSample
	for rows.Next() {
		var s models.TrafficSample
		var vehicleType string
		err := rows.Scan(
			&s.VehicleID,
			&vehicleType,
			&s.RouteID,
			&s.Speed,
			&s.Position.X,
			&s.Position.Y,
			&s.Timestamp,
			&s.RouteName,
			&s.SpeedLimit,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan traffic sample: %w", err)
		}
		s.VehicleType = models.VehicleType(vehicleType)
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

func (p *PostgresSink) RecentCongestion(ctx context.Context, since time.Duration) ([]models.CongestionPoint, error) {
	query := `
        SELECT cp.route_id, cp.location_x, cp.location_y, cp.congestion_level,
               cp.average_speed, cp.vehicle_count, cp.detected_at, r.route_name
        FROM congestion_points cp
        JOIN routes r ON cp.route_id = r.route_id
        WHERE cp.detected_at >= $1
        ORDER BY cp.detected_at DESC`

	rows, err := p.pool.Query(ctx, query, time.Now().Add(-since))
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

func (p *PostgresSink) RouteStatistics(ctx context.Context, window time.Duration) ([]models.RouteStats, error) {
	query := `
        SELECT r.route_id, r.route_name, r.speed_limit,
               AVG(ts.speed) AS avg_speed,
               MIN(ts.speed) AS min_speed,
               MAX(ts.speed) AS max_speed,
               COUNT(*) AS data_points,
               COUNT(DISTINCT ts.vehicle_id) AS unique_vehicles
        FROM routes r
        JOIN traffic_samples ts ON r.route_id = ts.route_id
        WHERE ts.recorded_at >= $1
        GROUP BY r.route_id, r.route_name, r.speed_limit
        ORDER BY avg_speed ASC`

	rows, err := p.pool.Query(ctx, query, time.Now().Add(-window))
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

func (p *PostgresSink) PurgeOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := time.Now().Add(-age)

	trafficTag, err := p.pool.Exec(ctx, "DELETE FROM traffic_samples WHERE recorded_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge traffic samples: %w", err)
	}
	congestionTag, err := p.pool.Exec(ctx, "DELETE FROM congestion_points WHERE detected_at < $1", cutoff)
	if err != nil {
		return trafficTag.RowsAffected(), fmt.Errorf("failed to purge congestion points: %w", err)
	}
	return trafficTag.RowsAffected() + congestionTag.RowsAffected(), nil
}

func (p *PostgresSink) Close() error {
	p.pool.Close()
	return nil
}
