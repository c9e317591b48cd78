// Command lexsim extracts bags of words from texts and scores texts against
// a directory of reference files, without running the similarity service.
//
//	lexsim bow "abababcd" --word-size 2
//	lexsim bow notes.txt --file --mode ngram --ngram-max 2
//	lexsim score query.txt --file --corpus ./refs --top 5
package main
