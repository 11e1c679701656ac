package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/internal/domain/model"
)

// Artifact file contents matching the standard insurance dataset layout.
const (
	ColumnsJSON = `["age","bmi","children","sex_male","smoker_yes","region_northwest","region_southeast","region_southwest"]`
	ScalerJSON  = `{"features":["age","bmi","children"],"mean":[39.207,30.663,1.095],"scale":[14.045,6.096,1.205]}`
	ModelJSON   = `{"kind":"linear","n_features":8,"coef":[0.486,0.082,0.123,-0.075,1.554,-0.064,-0.157,-0.129],"intercept":8.91}`
)

// WriteArtifactSet writes a complete artifact directory under t.TempDir and
// returns its path. overrides replaces or adds files by name; an empty value
// removes the file.
func WriteArtifactSet(t *testing.T, overrides map[string]string) string {
	t.Helper()

	files := map[string]string{
		"columns.json": ColumnsJSON,
		"scaler.json":  ScalerJSON,
		"model.json":   ModelJSON,
	}
	for name, content := range overrides {
		if content == "" {
			delete(files, name)
			continue
		}
		files[name] = content
	}

	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return dir
}

// ScenarioAttributes returns the reference applicant: a 19 year old female
// smoker from the southwest.
func ScenarioAttributes() model.RawAttributes {
	return model.RawAttributes{
		model.AttrAge:      19,
		model.AttrBMI:      27.9,
		model.AttrChildren: 0,
		model.AttrSex:      "female",
		model.AttrSmoker:   "yes",
		model.AttrRegion:   "southwest",
	}
}
