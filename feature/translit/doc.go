// Package translit converts Cyrillic registry text to a Latin form for the *_en columns.
package translit
