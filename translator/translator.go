// Package translator turns WebGL shader sources into GLSL 410.
package translator

import (
	"context"
	"fmt"
	"sync"

	gst "github.com/richinsley/goshadertranslator"
)

// Stage names understood by the translator.
const (
	StageVertex   = "vertex"
	StageFragment = "fragment"
)

var (
	once       sync.Once
	translator *gst.ShaderTranslator
	initErr    error
)

// GetTranslator returns the shared translator, creating it on first use.
func GetTranslator() (*gst.ShaderTranslator, error) {
	once.Do(func() {
		translator, initErr = gst.NewShaderTranslator(context.Background())
	})
	return translator, initErr
}

// Shader is a translated stage. Names maps each declared variable to the
// name it has in Code.
type Shader struct {
	Code  string
	Names map[string]string
}

// MappedName returns the translated name of a declared variable, falling
// back to the source name.
func (s *Shader) MappedName(name string) string {
	if mapped, ok := s.Names[name]; ok && mapped != "" {
		return mapped
	}
	return name
}

// Translate converts a WebGL stage to GLSL 410 for a core profile context.
func Translate(source, stage string) (*Shader, error) {
	t, err := GetTranslator()
	if err != nil {
		return nil, fmt.Errorf("failed to create shader translator: %w", err)
	}

	out, err := t.TranslateShader(source, stage, gst.ShaderSpecWebGL2, gst.OutputFormatGLSL410)
	if err != nil {
		return nil, fmt.Errorf("%s shader translation failed: %w", stage, err)
	}

	s := &Shader{Code: out.Code, Names: make(map[string]string, len(out.Variables))}
	for name, v := range out.Variables {
		s.Names[name] = v.MappedName
	}
	return s, nil
}
