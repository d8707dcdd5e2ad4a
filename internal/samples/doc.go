// Package samples reads posterior sample tables and reduces them to the
// right ascension / declination pairs the sky posterior is built from.
//
// A sample table is plain text: the first line names the columns, every
// following line holds one whitespace-separated row of floats. Columns are
// looked up by name, so any extra parameters in the file are ignored.
package samples
