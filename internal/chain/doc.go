// Package chain orders face encodings into a progressive similarity chain.
//
// Build starts from the candidate closest to a reference encoding and then
// repeatedly walks to the candidate with the lowest effective distance to
// the most recently placed one. The effective distance is the Euclidean
// distance plus AgeWeight times the number of rounds the candidate has been
// passed over. Only the raw distance is reported in the output.
//
// The pool is an ordered slice. Ties on distance break towards the earliest
// position in that slice, so identical input always yields identical output.
package chain
