package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/signalsfoundry/surfacegeom/core"
	"github.com/signalsfoundry/surfacegeom/internal/logging"
	"github.com/signalsfoundry/surfacegeom/orbit"
	"github.com/signalsfoundry/surfacegeom/timectrl"
)

// ISS sample TLE.
const (
	defaultTLE1 = "1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9990"
	defaultTLE2 = "2 25544  51.6459 115.9059 0001817  61.3028  35.9198 15.49370953257760"
)

// siteLiftKm raises the ground site off the surface so that the segment to
// the satellite does not start on the ellipsoid itself.
const siteLiftKm = 1e-3

type options struct {
	TLE1, TLE2 string
	Start      time.Time
	Duration   time.Duration
	Step       time.Duration
	SiteLat    float64
	SiteLon    float64
	SiteAltKm  float64
	Body       string
}

func main() {
	var opts options
	var start string
	flag.StringVar(&opts.TLE1, "tle1", defaultTLE1, "first TLE line")
	flag.StringVar(&opts.TLE2, "tle2", defaultTLE2, "second TLE line")
	flag.StringVar(&start, "start", "", "sweep start time, RFC 3339 (default: now)")
	flag.DurationVar(&opts.Duration, "duration", 90*time.Minute, "sweep length")
	flag.DurationVar(&opts.Step, "step", time.Minute, "sample spacing")
	flag.Float64Var(&opts.SiteLat, "site-lat", 0, "ground site geodetic latitude, degrees")
	flag.Float64Var(&opts.SiteLon, "site-lon", 0, "ground site longitude, degrees")
	flag.Float64Var(&opts.SiteAltKm, "site-alt", 0, "ground site height above the ellipsoid, km")
	flag.StringVar(&opts.Body, "body", "wgs72", "reference body: wgs84, wgs72 or sphere")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts.Start = time.Now().UTC().Truncate(time.Second)
	if start != "" {
		t, err := time.Parse(time.RFC3339, start)
		if err != nil {
			log.Error(ctx, "invalid -start", logging.String("start", start), logging.Err(err))
			os.Exit(2)
		}
		opts.Start = t.UTC()
	}

	n, err := run(ctx, opts, os.Stdout)
	if err != nil {
		log.Error(ctx, "ground track failed", logging.Int("samples", n), logging.Err(err))
		os.Exit(1)
	}
	log.Info(ctx, "ground track complete", logging.Int("samples", n))
}

// run sweeps the orbit and writes one line per sample to w.
func run(ctx context.Context, opts options, w io.Writer) (int, error) {
	body, gravity, err := orbit.Body(opts.Body)
	if err != nil {
		return 0, err
	}
	prop, err := orbit.NewPropagator(opts.TLE1, opts.TLE2, gravity)
	if err != nil {
		return 0, err
	}

	site := orbit.GeodeticToECEF(body, opts.SiteLat, opts.SiteLon, opts.SiteAltKm)
	viewFrom := orbit.GeodeticToECEF(body, opts.SiteLat, opts.SiteLon, opts.SiteAltKm+siteLiftKm)

	fmt.Fprintf(w, "# satellite %s, body %s, site (%.4f, %.4f, %.3f km)\n",
		prop.CatalogNumber(), opts.Body, opts.SiteLat, opts.SiteLon, opts.SiteAltKm)

	return timectrl.Sweep(ctx, opts.Start, opts.Duration, opts.Step, func(t time.Time) error {
		sp, err := prop.SubPoint(t, body)
		if err != nil {
			return err
		}
		s, err := sampleSite(body, site, viewFrom, sp.Position)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s lat=%9.4f lon=%9.4f alt=%8.2f km el=%7.2f deg visible=%t\n",
			t.Format(time.RFC3339), sp.LatitudeDeg, sp.LongitudeDeg, sp.AltitudeKm, s.elevation, s.visible)
		return err
	})
}

type siteSample struct {
	elevation float64
	visible   bool
}

func sampleSite(body core.Ellipsoid, site, viewFrom, sat core.Vector3) (siteSample, error) {
	el, err := body.ElevationDegrees(site, sat)
	if err != nil {
		return siteSample{}, err
	}
	return siteSample{
		elevation: el,
		visible:   el > 0 && body.LineOfSight(viewFrom, sat),
	}, nil
}
