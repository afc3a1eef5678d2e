// Package normalize converts the free-text encodings found in the raw movie
// datasets into canonical values.
//
// Every function is total: unparseable input yields nil, never an error or a
// panic. Null spellings are recognized in one place, IsNullToken, and every
// normalizer consults it first.
package normalize
