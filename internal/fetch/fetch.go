// Package fetch downloads heightmap tiles from the elevation backend
// and keeps a compressed on-disk cache of the raw GeoTIFF payloads.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/krzyz/topo-renderer/internal/geo"
	"github.com/krzyz/topo-renderer/internal/geotiff"
)

// Result carries one finished tile request.
type Result struct {
	Location geo.GeoLocation
	Tile     *geotiff.GeoTIFF
	Err      error
}

// Client fetches heightmap tiles over HTTP.
type Client struct {
	baseURL  string
	cacheDir string
	http     *http.Client
	log      *zap.Logger

	mu       sync.Mutex
	inflight map[geo.GeoLocation]struct{}
}

// NewClient creates a tile client. cacheDir may be empty to disable the
// on-disk cache. A nil logger disables logging.
func NewClient(baseURL, cacheDir string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:  baseURL,
		cacheDir: cacheDir,
		http:     &http.Client{Timeout: 60 * time.Second},
		log:      log,
		inflight: make(map[geo.GeoLocation]struct{}),
	}
}

// FetchTile returns the decoded heightmap for one location, consulting
// the cache before going to the backend.
func (c *Client) FetchTile(ctx context.Context, loc geo.GeoLocation) (*geotiff.GeoTIFF, error) {
	if data, ok := c.readCache(loc); ok {
		tile, err := geotiff.Decode(data)
		if err == nil {
			c.log.Debug("tile served from cache", zap.Stringer("location", loc))
			return tile, nil
		}
		c.log.Warn("discarding corrupt cached tile",
			zap.Stringer("location", loc), zap.Error(err))
	}

	data, err := c.download(ctx, loc)
	if err != nil {
		return nil, err
	}
	tile, err := geotiff.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding tile %s: %w", loc, err)
	}
	c.writeCache(loc, data)
	return tile, nil
}

// FetchArea requests the (2r+1)x(2r+1) block of tiles around center and
// delivers each one on the returned channel as it completes. The channel
// is closed once every request has finished or the context is cancelled.
func (c *Client) FetchArea(ctx context.Context, center geo.GeoLocation, radius int) <-chan Result {
	results := make(chan Result)

	var wg sync.WaitGroup
	for dLat := -radius; dLat <= radius; dLat++ {
		for dLon := -radius; dLon <= radius; dLon++ {
			loc := center.Shift(dLat, dLon)
			if !c.begin(loc) {
				continue
			}
			wg.Add(1)
			go func(loc geo.GeoLocation) {
				defer wg.Done()
				defer c.end(loc)
				tile, err := c.FetchTile(ctx, loc)
				select {
				case results <- Result{Location: loc, Tile: tile, Err: err}:
				case <-ctx.Done():
				}
			}(loc)
		}
	}
	go func() {
		wg.Wait()
		close(results)
	}()
	return results
}

// begin marks a location as in flight. It reports false when another
// request for the same tile is already running.
func (c *Client) begin(loc geo.GeoLocation) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.inflight[loc]; ok {
		return false
	}
	c.inflight[loc] = struct{}{}
	return true
}

func (c *Client) end(loc geo.GeoLocation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, loc)
}

func (c *Client) download(ctx context.Context, loc geo.GeoLocation) ([]byte, error) {
	url := fmt.Sprintf("%s?%s", c.baseURL, loc.RequestParams())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", loc, err)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching tile %s: %w", loc, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching tile %s: status %s", loc, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading tile %s: %w", loc, err)
	}

	c.log.Info("tile downloaded",
		zap.Stringer("location", loc),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", time.Since(start)))
	return data, nil
}

func (c *Client) cachePath(loc geo.GeoLocation) string {
	return filepath.Join(c.cacheDir,
		fmt.Sprintf("%s_%s.tif.gz", loc.Latitude, loc.Longitude))
}

func (c *Client) readCache(loc geo.GeoLocation) ([]byte, bool) {
	if c.cacheDir == "" {
		return nil, false
	}
	f, err := os.Open(c.cachePath(loc))
	if err != nil {
		return nil, false
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, false
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *Client) writeCache(loc geo.GeoLocation, data []byte) {
	if c.cacheDir == "" {
		return
	}
	if err := os.MkdirAll(c.cacheDir, 0o755); err != nil {
		c.log.Warn("creating tile cache dir", zap.Error(err))
		return
	}

	path := c.cachePath(loc)
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		c.log.Warn("writing tile cache", zap.Error(err))
		return
	}
	zw := gzip.NewWriter(f)
	if _, err := zw.Write(data); err == nil {
		err = zw.Close()
	} else {
		zw.Close()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp, path)
	}
	if err != nil {
		os.Remove(tmp)
		c.log.Warn("writing tile cache", zap.Error(err))
	}
}
