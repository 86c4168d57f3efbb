package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/parquet-go/parquet-go"
)

// Person is the sample row imported with: import testdata/people.parquet into people!
type Person struct {
	ID     int64   `parquet:"id"`
	Name   string  `parquet:"name"`
	Age    int32   `parquet:"age"`
	City   string  `parquet:"city"`
	Active bool    `parquet:"active"`
	Score  float64 `parquet:"score"`
}

func main() {
	out := flag.String("o", "people.parquet", "output file")
	n := flag.Int("n", 25, "number of rows")
	flag.Parse()

	names := []string{"alice", "bob", "charlie", "diana", "eve", "frank", "grace"}
	cities := []string{"Berlin", "Lisbon", "New York", "Oslo"}

	people := make([]Person, *n)
	for i := range people {
		people[i] = Person{
			ID:     int64(i + 1),
			Name:   fmt.Sprintf("%s%d", names[i%len(names)], i/len(names)),
			Age:    int32(20 + (i*7)%45),
			City:   cities[i%len(cities)],
			Active: i%3 != 0,
			Score:  float64(50+(i*13)%50) + 0.5,
		}
	}

	file, err := os.Create(*out)
	if err != nil {
		log.Fatal(err)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[Person](file)
	if _, err := writer.Write(people); err != nil {
		log.Fatal(err)
	}
	if err := writer.Close(); err != nil {
		log.Fatal(err)
	}

	log.Printf("Generated %s with %d people", *out, len(people))
}
