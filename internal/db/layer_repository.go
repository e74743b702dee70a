package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/gridnav/internal/geo"
)

// ErrMapNotFound is returned when a map has no stored layers.
var ErrMapNotFound = errors.New("map not found")

// LayerInfo describes a stored layer without its bits.
type LayerInfo struct {
	MapName     string
	LayerName   string
	Origin      geo.Cell
	Width       int32
	Height      int32
	Fingerprint string
}

// LayerRepository persists obstacle bitmaps in nav_layers.
type LayerRepository struct {
	pool *pgxpool.Pool
}

// NewLayerRepository creates a new layer repository.
func NewLayerRepository(pool *pgxpool.Pool) *LayerRepository {
	return &LayerRepository{pool: pool}
}

// Save upserts one layer of a map.
func (r *LayerRepository) Save(ctx context.Context, mapName, layerName string, bm *geo.Bitmap) error {
	data, err := bm.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encoding layer %s/%s: %w", mapName, layerName, err)
	}

	origin := bm.Origin()
	_, err = r.pool.Exec(ctx,
		`INSERT INTO nav_layers
		 (map_name, layer_name, origin_x, origin_y, width, height, data, fingerprint, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,now())
		 ON CONFLICT (map_name, layer_name) DO UPDATE SET
		  origin_x=$3, origin_y=$4, width=$5, height=$6,
		  data=$7, fingerprint=$8, updated_at=now()`,
		mapName, layerName, origin.X, origin.Y, bm.Width(), bm.Height(), data, bm.Fingerprint(),
	)
	if err != nil {
		return fmt.Errorf("saving layer %s/%s: %w", mapName, layerName, err)
	}
	return nil
}

// ReplaceMap atomically replaces every layer of mapName with layers.
// Only *geo.Bitmap layers can be stored.
func (r *LayerRepository) ReplaceMap(ctx context.Context, mapName string, layers []geo.NamedLayer) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM nav_layers WHERE map_name = $1`, mapName); err != nil {
		return fmt.Errorf("deleting map %s: %w", mapName, err)
	}

	for _, nl := range layers {
		bm, ok := nl.Layer.(*geo.Bitmap)
		if !ok {
			return fmt.Errorf("layer %s/%s: unsupported layer type %T", mapName, nl.Name, nl.Layer)
		}
		data, err := bm.MarshalBinary()
		if err != nil {
			return fmt.Errorf("encoding layer %s/%s: %w", mapName, nl.Name, err)
		}
		origin := bm.Origin()
		if _, err := tx.Exec(ctx,
			`INSERT INTO nav_layers
			 (map_name, layer_name, origin_x, origin_y, width, height, data, fingerprint)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			mapName, nl.Name, origin.X, origin.Y, bm.Width(), bm.Height(), data, bm.Fingerprint(),
		); err != nil {
			return fmt.Errorf("inserting layer %s/%s: %w", mapName, nl.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit map %s: %w", mapName, err)
	}
	return nil
}

// LoadMap loads all layers of mapName ordered by layer name.
// Returns ErrMapNotFound if the map has no layers.
func (r *LayerRepository) LoadMap(ctx context.Context, mapName string) ([]geo.NamedLayer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT layer_name, data, fingerprint
		 FROM nav_layers
		 WHERE map_name = $1
		 ORDER BY layer_name`, mapName)
	if err != nil {
		return nil, fmt.Errorf("loading map %s: %w", mapName, err)
	}
	defer rows.Close()

	var layers []geo.NamedLayer
	for rows.Next() {
		var (
			name        string
			data        []byte
			fingerprint string
		)
		if err := rows.Scan(&name, &data, &fingerprint); err != nil {
			return nil, fmt.Errorf("scanning layer row: %w", err)
		}

		bm, err := geo.ParseBitmapBinary(data)
		if err != nil {
			return nil, fmt.Errorf("decoding layer %s/%s: %w", mapName, name, err)
		}
		if got := bm.Fingerprint(); got != fingerprint {
			slog.Warn("layer fingerprint mismatch", "map", mapName, "layer", name, "stored", fingerprint, "actual", got)
		}
		layers = append(layers, geo.NamedLayer{Name: name, Layer: bm})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating layer rows: %w", err)
	}

	if len(layers) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMapNotFound, mapName)
	}
	return layers, nil
}

// ListMaps returns the stored map names in order.
func (r *LayerRepository) ListMaps(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT map_name FROM nav_layers ORDER BY map_name`)
	if err != nil {
		return nil, fmt.Errorf("listing maps: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning map name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating map names: %w", err)
	}
	return names, nil
}

// ListLayers returns metadata for the layers of mapName.
func (r *LayerRepository) ListLayers(ctx context.Context, mapName string) ([]LayerInfo, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT map_name, layer_name, origin_x, origin_y, width, height, fingerprint
		 FROM nav_layers
		 WHERE map_name = $1
		 ORDER BY layer_name`, mapName)
	if err != nil {
		return nil, fmt.Errorf("listing layers of %s: %w", mapName, err)
	}
	defer rows.Close()

	var out []LayerInfo
	for rows.Next() {
		var li LayerInfo
		if err := rows.Scan(&li.MapName, &li.LayerName, &li.Origin.X, &li.Origin.Y, &li.Width, &li.Height, &li.Fingerprint); err != nil {
			return nil, fmt.Errorf("scanning layer info: %w", err)
		}
		out = append(out, li)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating layer info: %w", err)
	}
	return out, nil
}

// Delete removes one layer. Deleting a missing layer is not an error.
func (r *LayerRepository) Delete(ctx context.Context, mapName, layerName string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM nav_layers WHERE map_name = $1 AND layer_name = $2`, mapName, layerName)
	if err != nil {
		return fmt.Errorf("deleting layer %s/%s: %w", mapName, layerName, err)
	}
	return nil
}

// LoadInto loads mapName, adds a bounds layer and installs it into w.
func (r *LayerRepository) LoadInto(ctx context.Context, w *geo.World, mapName string) error {
	layers, err := r.LoadMap(ctx, mapName)
	if err != nil {
		return err
	}
	snap := w.Replace(geo.WithBounds(layers))
	slog.Info("layers loaded", "map", mapName, "layers", len(layers), "fingerprint", snap.Fingerprint())
	return nil
}
