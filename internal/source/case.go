package source

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/parcel-cli/internal/model"
	"github.com/sells-group/parcel-cli/internal/pipeline"
)

// Case is one parcel analysis request as written in a YAML case file.
type Case struct {
	Name                 string                        `yaml:"name"`
	Subject              model.Subject                 `yaml:"subject"`
	Premium              model.Premium                 `yaml:"premium"`
	HousingType          string                        `yaml:"housing_type"`
	TargetUnits          int                           `yaml:"target_units"`
	Restrictions         []string                      `yaml:"restrictions"`
	BenchmarkPricePerSqm float64                       `yaml:"benchmark_price_per_sqm"`
	Transactions         []model.ComparableTransaction `yaml:"transactions"`
	// TransactionsFile is resolved relative to the case file. Its rows are
	// appended to Transactions.
	TransactionsFile string `yaml:"transactions_file"`
}

// LoadCase reads and resolves one case file.
func LoadCase(path string) (*Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "source: read case %s", path)
	}

	var c Case
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, eris.Wrapf(err, "source: parse case %s", path)
	}
	if c.Name == "" {
		c.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	if c.TransactionsFile != "" {
		txPath := c.TransactionsFile
		if !filepath.IsAbs(txPath) {
			txPath = filepath.Join(filepath.Dir(path), txPath)
		}
		txs, err := LoadTransactions(txPath)
		if err != nil {
			return nil, eris.Wrapf(err, "source: case %s", c.Name)
		}
		c.Transactions = append(c.Transactions, txs...)
	}
	return &c, nil
}

// LoadCases loads every case matched by pattern. A directory loads its
// .yaml and .yml files. Cases come back sorted by path.
func LoadCases(pattern string) ([]*Case, error) {
	var paths []string
	if info, err := os.Stat(pattern); err == nil && info.IsDir() {
		for _, ext := range []string{"*.yaml", "*.yml"} {
			m, err := filepath.Glob(filepath.Join(pattern, ext))
			if err != nil {
				return nil, eris.Wrapf(err, "source: glob %s", pattern)
			}
			paths = append(paths, m...)
		}
	} else {
		m, err := filepath.Glob(pattern)
		if err != nil {
			return nil, eris.Wrapf(err, "source: glob %s", pattern)
		}
		paths = m
	}
	if len(paths) == 0 {
		return nil, eris.Errorf("source: no case files match %s", pattern)
	}
	sort.Strings(paths)

	cases := make([]*Case, 0, len(paths))
	for _, p := range paths {
		c, err := LoadCase(p)
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	return cases, nil
}

// Input converts the case into a pipeline input. An empty housing type is
// left for the pipeline to default.
func (c *Case) Input() (pipeline.Input, error) {
	var ht model.HousingType
	if strings.TrimSpace(c.HousingType) != "" {
		parsed, err := model.ParseHousingType(c.HousingType)
		if err != nil {
			return pipeline.Input{}, eris.Wrapf(err, "source: case %s", c.Name)
		}
		ht = parsed
	}
	if c.TargetUnits < 0 {
		return pipeline.Input{}, &model.InvalidInputError{Field: "target_units", Reason: "must be >= 0"}
	}

	return pipeline.Input{
		Name:                 c.Name,
		Subject:              c.Subject,
		Transactions:         model.CloneTransactions(c.Transactions),
		Premium:              c.Premium.Clone(),
		HousingType:          ht,
		TargetUnits:          c.TargetUnits,
		Restrictions:         append([]string(nil), c.Restrictions...),
		BenchmarkPricePerSqm: c.BenchmarkPricePerSqm,
	}, nil
}
