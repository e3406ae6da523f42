package kernels

import (
	"fmt"
	"os"
	"path/filepath"

	"parallel-bench/internal/config"
	"parallel-bench/internal/dataset"
)

func fillFrom(g *config.GeneratorConfig) dataset.Fill {
	return dataset.Fill{
		Type:         dataset.FillType(g.Fill),
		Min:          g.Min,
		Max:          g.Max,
		Start:        g.Start,
		Step:         g.Step,
		StepInterval: g.StepInterval,
		Seed:         g.Seed,
	}
}

// generatedPath is where a generated dataset is written. Without a
// configured path it goes to the temp dir, named after its position.
func generatedPath(i int, dc config.DatasetConfig) string {
	if dc.Path != "" {
		return dc.Path
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("parallel-bench-%d.%s", i, dc.Kind))
}

func arrayDatasets[T dataset.Number](cfgs []config.DatasetConfig) (*dataset.Collection[[]T], error) {
	c := dataset.NewCollection[[]T]()
	for i, dc := range cfgs {
		if dc.Generate == nil {
			c.Add(dataset.NewArray[T](dc.Path))
			continue
		}
		ds, err := dataset.GenerateArray[T](generatedPath(i, dc), dc.Generate.Size, fillFrom(dc.Generate))
		if err != nil {
			return nil, fmt.Errorf("dataset %d: %w", i, err)
		}
		c.Add(ds)
	}
	return c, nil
}

func matrixDatasets[T dataset.Number](cfgs []config.DatasetConfig) (*dataset.Collection[dataset.Grid[T]], error) {
	c := dataset.NewCollection[dataset.Grid[T]]()
	for i, dc := range cfgs {
		if dc.Generate == nil {
			c.Add(dataset.NewMatrix[T](dc.Path))
			continue
		}
		ds, err := dataset.GenerateMatrix[T](generatedPath(i, dc), dc.Generate.Rows, dc.Generate.Cols, fillFrom(dc.Generate))
		if err != nil {
			return nil, fmt.Errorf("dataset %d: %w", i, err)
		}
		c.Add(ds)
	}
	return c, nil
}

func textDatasets(cfgs []config.DatasetConfig) (*dataset.Collection[[]byte], error) {
	c := dataset.NewCollection[[]byte]()
	for i, dc := range cfgs {
		if dc.Generate == nil {
			c.Add(dataset.NewText(dc.Path))
			continue
		}
		ds, err := dataset.GenerateText(generatedPath(i, dc), dc.Generate.Text)
		if err != nil {
			return nil, fmt.Errorf("dataset %d: %w", i, err)
		}
		c.Add(ds)
	}
	return c, nil
}
