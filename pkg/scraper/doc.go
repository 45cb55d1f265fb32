// Package scraper selects the training lines of protein secondary-structure datasets.
//
// A dataset is a directory of ".dat" files. Each line of a file is a record of whitespace-delimited
// fields where field 4 (0-based) holds an amino-acid sequence and field 5 the matching secondary-structure
// sequence. A line is kept only when both sequences use the recognized alphabets.
//
// CollectFiles lists the dataset files of a directory, ReadLines and StreamLines return the valid lines of
// one file, and Scan runs both over a whole directory on a concurrent pipeline.
package scraper
