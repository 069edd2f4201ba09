package judge0

import (
	"errors"
	"fmt"
	"strings"

	"github.com/learnforge/learnforge-backend/internal/model"
)

// ErrUnsupportedLanguage is returned by Resolve for unknown keys/aliases.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// definitions is the set of languages exposed to clients, mapped to the
// Judge0 CE language ids we submit with. The editor field is a syntax
// highlighting hint for the caller's editor widget.
var definitions = []model.LanguageDescriptor{
	{Key: "python", ID: 71, Name: "Python (3.8.1)", Editor: "python", Aliases: []string{"py", "python3"}},
	{Key: "javascript", ID: 63, Name: "JavaScript (Node.js 12.14)", Editor: "javascript", Aliases: []string{"js", "node"}},
	{Key: "typescript", ID: 74, Name: "TypeScript (3.7.4)", Editor: "typescript", Aliases: []string{"ts"}},
	{Key: "c", ID: 50, Name: "C (GCC 9.2.0)", Editor: "c", Aliases: []string{}},
	{Key: "cpp", ID: 54, Name: "C++ (GCC 9.2.0)", Editor: "cpp", Aliases: []string{"c++"}},
	{Key: "java", ID: 62, Name: "Java (OpenJDK 13)", Editor: "java", Aliases: []string{}},
	{Key: "csharp", ID: 51, Name: "C# (Mono 6.6)", Editor: "csharp", Aliases: []string{"c#", "cs"}},
	{Key: "go", ID: 60, Name: "Go (1.13.5)", Editor: "go", Aliases: []string{"golang"}},
	{Key: "rust", ID: 73, Name: "Rust (1.40.0)", Editor: "rust", Aliases: []string{}},
	{Key: "ruby", ID: 72, Name: "Ruby (2.7.0)", Editor: "ruby", Aliases: []string{}},
	{Key: "php", ID: 68, Name: "PHP (7.4.1)", Editor: "php", Aliases: []string{}},
	{Key: "swift", ID: 83, Name: "Swift (5.2.3)", Editor: "swift", Aliases: []string{}},
	{Key: "kotlin", ID: 78, Name: "Kotlin (1.3.70)", Editor: "kotlin", Aliases: []string{}},
	{Key: "sql", ID: 82, Name: "SQL (SQLite 3.27)", Editor: "sql", Aliases: []string{"sqlite"}},
	{Key: "bash", ID: 46, Name: "Bash (5.0.0)", Editor: "shell", Aliases: []string{"sh", "shell"}},
}

// aliasIndex maps every key and alias (lowercased) to its descriptor.
var aliasIndex = buildAliasIndex()

func buildAliasIndex() map[string]*model.LanguageDescriptor {
	idx := make(map[string]*model.LanguageDescriptor)
	for i := range definitions {
		d := &definitions[i]
		idx[strings.ToLower(d.Key)] = d
		for _, alias := range d.Aliases {
			idx[strings.ToLower(alias)] = d
		}
	}
	return idx
}

// Languages returns a copy of the supported language catalog.
func Languages() []model.LanguageDescriptor {
	out := make([]model.LanguageDescriptor, len(definitions))
	copy(out, definitions)
	return out
}

// Resolve maps a language key or alias to its descriptor.
func Resolve(language string) (*model.LanguageDescriptor, error) {
	if language != "" {
		if d, ok := aliasIndex[strings.ToLower(language)]; ok {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)
}
