package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SeedFile describes an initial catalog.
type SeedFile struct {
	Authors []SeedAuthor `yaml:"authors"`
}

type SeedAuthor struct {
	Name  string     `yaml:"name"`
	Books []SeedBook `yaml:"books"`
}

type SeedBook struct {
	Title string `yaml:"title"`
	Pages int    `yaml:"pages"`
}

// LoadSeedFile decodes the yaml seed file at path.
func LoadSeedFile(path string) (*SeedFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	seed := &SeedFile{}
	if err = yaml.NewDecoder(file).Decode(seed); err != nil {
		return nil, fmt.Errorf("failed to decode seed file: %w", err)
	}
	return seed, nil
}

// SeedLibrary creates the authors and books of the seed and adds the
// books to the library. It returns the created authors and the number
// of books added, even on failure.
func SeedLibrary(lib *Library, ids UIDHandler, seed *SeedFile) ([]*Author, int, error) {
	authors := []*Author{}
	added := 0
	for _, sa := range seed.Authors {
		if sa.Name == "" {
			return authors, added, missingFieldError("author name")
		}
		author := NewAuthor(ids.Generate(AuthorIDPrefix), sa.Name)
		authors = append(authors, author)
		for _, sb := range sa.Books {
			if sb.Title == "" {
				return authors, added, missingFieldError("book title")
			}
			if err := lib.AddBook(NewBook(ids.Generate(BookIDPrefix), sb.Title, author, sb.Pages)); err != nil {
				return authors, added, err
			}
			added++
		}
	}
	return authors, added, nil
}
