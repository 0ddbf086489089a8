package metrics

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it uses the rapport namespace", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "rapport")
				So(manager.subsystem, ShouldEqual, "analytics")
				So(manager.enabled, ShouldBeTrue)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("sub"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(false),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.lookupCollisions.Inc()

			Convey("Then metrics carry the namespace and constant labels", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				var found bool
				for _, f := range families {
					if f.GetName() != "test_sub_lookup_key_collisions_total" {
						continue
					}
					found = true
					So(f.GetMetric()[0].GetLabel()[0].GetName(), ShouldEqual, "env")
					So(f.GetMetric()[0].GetCounter().GetValue(), ShouldEqual, 1.0)
				}
				So(found, ShouldBeTrue)
				So(manager.enabled, ShouldBeFalse)
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
			})
		})

		Convey("When buckets are unsorted or repeated", func() {
			in := []float64{5, 1, 5, 2}
			manager := NewManager(
				WithHistogramBuckets(in),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then they are sorted and deduplicated without touching the input", func() {
				So(manager.histogramBuckets, ShouldResemble, []float64{1, 2, 5})
				So(in, ShouldResemble, []float64{5, 1, 5, 2})
			})
		})

		Convey("When creating with empty values", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithCustomLabels(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "rapport")
				So(manager.subsystem, ShouldEqual, "analytics")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
				So(manager.customLabels, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When rows are transformed and rejected", func() {
			before := testutil.ToFloat64(globalManager.rowsTransformed.WithLabelValues("pair"))
			rejectedBefore := testutil.ToFloat64(globalManager.rowsRejected.WithLabelValues("pair", "negative"))

			RecordRowsTransformed("pair", 42)
			RecordRowRejected("pair", "negative")

			Convey("Then the counters move by the recorded amounts", func() {
				So(testutil.ToFloat64(globalManager.rowsTransformed.WithLabelValues("pair")), ShouldEqual, before+42)
				So(testutil.ToFloat64(globalManager.rowsRejected.WithLabelValues("pair", "negative")), ShouldEqual, rejectedBefore+1)
			})
		})

		Convey("When a lookup is built", func() {
			collisions := testutil.ToFloat64(globalManager.lookupCollisions)
			RecordLookupBuild(120, 3.5)
			RecordLookupCollision()

			Convey("Then the pair gauge and collision counter are updated", func() {
				So(testutil.ToFloat64(globalManager.lookupPairs), ShouldEqual, 120.0)
				So(testutil.ToFloat64(globalManager.lookupCollisions), ShouldEqual, collisions+1)
			})
		})

		Convey("When a snapshot is published", func() {
			published := testutil.ToFloat64(globalManager.snapshotPublished)
			RecordSnapshotPublished(1700000000, 12.5)
			UpdateSnapshotRecords("trio", 7)

			Convey("Then snapshot metrics reflect it", func() {
				So(testutil.ToFloat64(globalManager.snapshotPublished), ShouldEqual, published+1)
				So(testutil.ToFloat64(globalManager.snapshotLastUnix), ShouldEqual, 1700000000.0)
				So(testutil.ToFloat64(globalManager.snapshotLastDurationMs), ShouldEqual, 12.5)
				So(testutil.ToFloat64(globalManager.snapshotRecords.WithLabelValues("trio")), ShouldEqual, 7.0)
			})
		})

		Convey("When provider, query and HTTP metrics are recorded", func() {
			errs := testutil.ToFloat64(globalManager.providerErrors.WithLabelValues("get_all_rivalries"))
			queries := testutil.ToFloat64(globalManager.leaderboardQueries.WithLabelValues("dream-teams"))

			So(func() {
				RecordProviderFetch("get_all_rivalries", 8)
				RecordProviderError("get_all_rivalries")
				RecordLeaderboardQuery("dream-teams")
				RecordHTTPRequest("/leaderboard/{board}", "GET", "200")
				RecordHTTPRequestDuration("/leaderboard/{board}", "GET", "200", 1.2)
				RecordErrorByComponent("provider", "upstream")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)

			So(testutil.ToFloat64(globalManager.providerErrors.WithLabelValues("get_all_rivalries")), ShouldEqual, errs+1)
			So(testutil.ToFloat64(globalManager.leaderboardQueries.WithLabelValues("dream-teams")), ShouldEqual, queries+1)
			So(testutil.ToFloat64(globalManager.systemGoroutineCount), ShouldEqual, 12.0)
		})

		Convey("When recording is disabled", func() {
			before := testutil.ToFloat64(globalManager.lookupCollisions)
			SetEnabled(false)
			RecordLookupCollision()
			SetEnabled(true)

			Convey("Then nothing is recorded", func() {
				So(testutil.ToFloat64(globalManager.lookupCollisions), ShouldEqual, before)
			})
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given metrics concurrency", t, func() {
		Convey("When recording metrics concurrently", func() {
			before := testutil.ToFloat64(globalManager.rowsTransformed.WithLabelValues("rivalry"))

			var wg sync.WaitGroup
			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for j := 0; j < 100; j++ {
						RecordRowsTransformed("rivalry", 1)
						RecordHTTPRequest("/stats", "GET", "200")
					}
				}()
			}
			wg.Wait()

			Convey("Then no increment is lost", func() {
				So(testutil.ToFloat64(globalManager.rowsTransformed.WithLabelValues("rivalry")), ShouldEqual, before+1000)
			})
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the custom registry", t, func() {
		RecordLookupCollision()
		families, err := GetRegistry().Gather()

		Convey("Then it gathers rapport metrics only", func() {
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
			for _, f := range families {
				So(f.GetName(), ShouldStartWith, "rapport_analytics_")
			}
		})
	})
}
