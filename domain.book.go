package main

// Author represents a book author. It is never mutated after creation
// and two authors with the same name remain distinct entities.
type Author struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewAuthor returns an author with the given handle and name.
func NewAuthor(id, name string) *Author {
	return &Author{ID: id, Name: name}
}

// Book represents a book entity. Identity is the pointer itself: two books
// sharing title and author are still different books. The ID is the opaque
// handle used to reference the book outside of the process.
type Book struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Author     *Author `json:"author"`
	Pages      int     `json:"pages"`
	CheckedOut bool    `json:"checkedOut"`
}

// NewBook returns an available book.
func NewBook(id, title string, author *Author, pages int) *Book {
	return &Book{ID: id, Title: title, Author: author, Pages: pages}
}

// AuthorName returns the author name or an empty string for anonymous books.
func (b *Book) AuthorName() string {
	if b.Author == nil {
		return ""
	}
	return b.Author.Name
}
