package sparc

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"rarscale/domain/rar"
	"rarscale/internal/errors"
	"rarscale/internal/logging"
)

// Loader reads whitespace-delimited rotation-curve tables (the SPARC
// mass-model layout: R, Vobs, e_Vobs, Vgas, Vdisk, Vbul, with #-comment
// headers) and normalizes them into the Sample schema. All column
// handling lives here; the analysis core only ever sees Samples.
type Loader struct {
	log *logging.Logger
}

// NewLoader creates a loader.
func NewLoader(log *logging.Logger) *Loader {
	return &Loader{log: log.Named("sparc")}
}

// LoadObject reads one object's table. The object name is the file stem.
// Unparsable rows are logged and skipped; only an unreadable file is an
// error.
func (l *Loader) LoadObject(path string) (rar.ObjectSamples, error) {
	file, err := os.Open(path)
	if err != nil {
		return rar.ObjectSamples{}, errors.LoadError(path, err)
	}
	defer file.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	obj := rar.ObjectSamples{
		Name:       name,
		Morphology: InferMorphology(name),
	}

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sample, ok := parseRow(line)
		if !ok {
			l.log.Debug("%s:%d: skipping unparsable row", name, lineNo)
			continue
		}
		obj.Samples = append(obj.Samples, sample)
	}
	if err := scanner.Err(); err != nil {
		return rar.ObjectSamples{}, errors.LoadError(path, err)
	}

	sort.Slice(obj.Samples, func(i, j int) bool {
		return obj.Samples[i].RadiusKpc < obj.Samples[j].RadiusKpc
	})
	return obj, nil
}

// LoadCatalog discovers and loads every table in a directory. Objects
// that fail to load are logged and skipped so one bad file cannot sink
// the catalog.
func (l *Loader) LoadCatalog(dir string) ([]rar.ObjectSamples, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.LoadError(dir, err)
	}

	var catalog []rar.ObjectSamples
	for _, entry := range entries {
		if entry.IsDir() || !isTableFile(entry.Name()) {
			continue
		}
		obj, err := l.LoadObject(filepath.Join(dir, entry.Name()))
		if err != nil {
			l.log.Warn("skipping %s: %v", entry.Name(), err)
			continue
		}
		catalog = append(catalog, obj)
	}
	l.log.Info("loaded %d objects from %s", len(catalog), dir)
	return catalog, nil
}

// parseRow converts one data row. The first three columns are required;
// the baryonic components default to zero when the table omits them.
func parseRow(line string) (rar.Sample, bool) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return rar.Sample{}, false
	}
	values := make([]float64, 0, 6)
	for i, f := range fields {
		if i == 6 {
			break // trailing surface-brightness columns are ignored
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return rar.Sample{}, false
		}
		values = append(values, v)
	}
	for len(values) < 6 {
		values = append(values, 0)
	}
	return rar.Sample{
		RadiusKpc: values[0],
		VObs:      values[1],
		VObsErr:   values[2],
		VGas:      values[3],
		VDisk:     values[4],
		VBulge:    values[5],
	}, true
}

// InferMorphology guesses a coarse class from catalog naming
// conventions.
func InferMorphology(name string) rar.Morphology {
	upper := strings.ToUpper(name)
	for _, kw := range []string{"DDO", "UGCA", "D5", "F5"} {
		if strings.Contains(upper, kw) {
			return rar.MorphologyDwarf
		}
	}
	for _, kw := range []string{"NGC", "UGC", "ESO", "IC", "PGC"} {
		if strings.Contains(upper, kw) {
			return rar.MorphologySpiral
		}
	}
	return rar.MorphologyUnknown
}

func isTableFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".dat":
		return true
	}
	return false
}
