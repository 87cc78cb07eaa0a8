package main

import (
	"strings"
)

// Catalog holds the ordered set of books known by the library.
type Catalog struct {
	books []*Book
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{books: []*Book{}}
}

// Contains reports whether this exact book is part of the catalog.
func (c *Catalog) Contains(book *Book) bool {
	return c.indexOf(book) >= 0
}

func (c *Catalog) indexOf(book *Book) int {
	for i, b := range c.books {
		if b == book {
			return i
		}
	}
	return -1
}

// Add appends the book unless it is already present.
func (c *Catalog) Add(book *Book) error {
	if c.Contains(book) {
		return ErrBookAlreadyInCatalog
	}
	c.books = append(c.books, book)
	return nil
}

// Remove detaches the book from the catalog.
func (c *Catalog) Remove(book *Book) error {
	i := c.indexOf(book)
	if i < 0 {
		return ErrBookNotInCatalog
	}
	c.books = append(c.books[:i], c.books[i+1:]...)
	return nil
}

// Lookup finds a book by its handle.
func (c *Catalog) Lookup(id string) (*Book, error) {
	for _, b := range c.books {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, ErrBookNotInCatalog
}

// Books returns a copy of the catalog content in insertion order.
func (c *Catalog) Books() []*Book {
	books := make([]*Book, len(c.books))
	copy(books, c.books)
	return books
}

// Len returns the number of books in the catalog.
func (c *Catalog) Len() int {
	return len(c.books)
}

// FindByTitle returns books whose title contains the given text, ignoring case.
func (c *Catalog) FindByTitle(text string) []*Book {
	return c.filter(text, func(b *Book) string { return b.Title })
}

// FindByAuthor returns books whose author name contains the given text, ignoring case.
func (c *Catalog) FindByAuthor(text string) []*Book {
	return c.filter(text, (*Book).AuthorName)
}

func (c *Catalog) filter(text string, field func(*Book) string) []*Book {
	needle := strings.ToLower(text)
	found := []*Book{}
	for _, b := range c.books {
		if strings.Contains(strings.ToLower(field(b)), needle) {
			found = append(found, b)
		}
	}
	return found
}
