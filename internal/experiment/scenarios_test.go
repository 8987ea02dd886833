package experiment_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/swarmlab/internal/config"
	"github.com/san-kum/swarmlab/internal/experiment"
	"github.com/san-kum/swarmlab/internal/metrics"
	"github.com/san-kum/swarmlab/internal/simulator"
)

var _ = Describe("Presets", func() {
	It("builds every preset into a runnable simulator", func() {
		reg := experiment.NewRegistry()
		for _, name := range config.ListPresets() {
			cfg := config.GetPreset(name)
			Expect(cfg).NotTo(BeNil(), "preset %s", name)

			sim, err := experiment.Build(reg, cfg)
			Expect(err).NotTo(HaveOccurred(), "preset %s", name)
			Expect(sim.Populations()).NotTo(BeEmpty(), "preset %s", name)
		}
	})
})

var _ = Describe("Free diffusion", func() {
	var cfg *config.Config

	BeforeEach(func() {
		cfg = config.GetPreset("diffusion")
		cfg.Simulator.Duration = 2
		// A single diffusion constant makes the displacement growth
		// comparable against 4*D*t.
		cfg.Populations[0].Params.Generate["diffusion"] = constant(1)
	})

	It("matches the theoretical mean-squared displacement", func() {
		sim, err := experiment.BuildSeeded(experiment.NewRegistry(), cfg, 7)
		Expect(err).NotTo(HaveOccurred())

		res, err := sim.Run(context.Background(), experiment.RunConfig(cfg))
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Steps).To(Equal(200))

		// Planar Brownian motion: MSD(t) = 4*D*t, averaged over 200 walkers.
		Expect(res.Metrics["msd_walkers"]).To(BeNumerically("~", 8, 2.5))
	})

	It("spreads the cloud", func() {
		sim, err := experiment.BuildSeeded(experiment.NewRegistry(), cfg, 7)
		Expect(err).NotTo(HaveOccurred())

		_, err = sim.Run(context.Background(), experiment.RunConfig(cfg))
		Expect(err).NotTo(HaveOccurred())

		dispersion := seriesOf(sim, "dispersion_walkers")
		Expect(dispersion).To(HaveLen(200))
		Expect(dispersion[len(dispersion)-1]).To(BeNumerically(">", dispersion[0]))
	})
})

var _ = Describe("Shepherding", func() {
	It("keeps the dogs moving and the sheep fraction sane", func() {
		cfg := config.GetPreset("shepherding")
		cfg.Simulator.Duration = 10

		sim, err := experiment.BuildSeeded(experiment.NewRegistry(), cfg, 17)
		Expect(err).NotTo(HaveOccurred())

		res, err := sim.Run(context.Background(), experiment.RunConfig(cfg))
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Steps).To(BeNumerically("<=", 200))
		Expect(res.Steps).To(BeNumerically(">", 0))

		Expect(res.Metrics["goal_fraction_sheep"]).To(BeNumerically(">=", 0))
		Expect(res.Metrics["goal_fraction_sheep"]).To(BeNumerically("<=", 1))
		Expect(res.Metrics["path_length_dogs"]).To(BeNumerically(">", 0))
	})

	It("stops as soon as the watched population fills the goal", func() {
		cfg := config.GetPreset("shepherding")
		cfg.Simulator.Duration = 10
		// Start the sheep inside a generous goal, so the stop condition
		// fires on the first committed tick.
		cfg.Environment.Goal.Radius = 40
		cfg.Environment.Goal.StopFraction = 0.9

		sim, err := experiment.BuildSeeded(experiment.NewRegistry(), cfg, 17)
		Expect(err).NotTo(HaveOccurred())

		res, err := sim.Run(context.Background(), experiment.RunConfig(cfg))
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Steps).To(Equal(1))
		Expect(res.Metrics["goal_fraction_sheep"]).To(BeNumerically(">=", 0.9))
	})
})

var _ = Describe("Corral", func() {
	It("pulls the walkers inward", func() {
		cfg := config.GetPreset("corral")
		cfg.Simulator.Duration = 2

		sim, err := experiment.BuildSeeded(experiment.NewRegistry(), cfg, 23)
		Expect(err).NotTo(HaveOccurred())

		_, err = sim.Run(context.Background(), experiment.RunConfig(cfg))
		Expect(err).NotTo(HaveOccurred())

		dispersion := seriesOf(sim, "dispersion_walkers")
		Expect(dispersion[len(dispersion)-1]).To(BeNumerically("<", dispersion[0]))
	})
})

var _ = Describe("Cluster", func() {
	It("stays finite and keeps the atoms apart", func() {
		cfg := config.GetPreset("cluster")
		cfg.Simulator.Duration = 1

		sim, err := experiment.BuildSeeded(experiment.NewRegistry(), cfg, 3)
		Expect(err).NotTo(HaveOccurred())

		res, err := sim.Run(context.Background(), experiment.RunConfig(cfg))
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Steps).To(Equal(200))

		// The repulsive core keeps every pair off each other even under
		// noise; anything below the length scale means the step exploded.
		atoms := res.Final.States["atoms"]
		min := math.Inf(1)
		for i := 0; i < atoms.Rows(); i++ {
			for j := i + 1; j < atoms.Rows(); j++ {
				d := math.Hypot(atoms.At(i, 0)-atoms.At(j, 0), atoms.At(i, 1)-atoms.At(j, 1))
				if d < min {
					min = d
				}
			}
		}
		Expect(min).To(BeNumerically(">", 0.7))
		Expect(res.Metrics["dispersion_atoms"]).To(BeNumerically("<", 8))
	})
})

func constant(v float64) config.ParamValue {
	return config.ParamValue{Const: &v}
}

// seriesOf pulls the recorded per-tick history of a named metric.
func seriesOf(sim *simulator.Simulator, name string) []float64 {
	for _, m := range sim.Metrics() {
		if m.Name() != name {
			continue
		}
		sm, ok := m.(metrics.SeriesMetric)
		Expect(ok).To(BeTrue(), "metric %s records no series", name)
		return sm.Series()
	}
	Fail("metric " + name + " not registered")
	return nil
}
