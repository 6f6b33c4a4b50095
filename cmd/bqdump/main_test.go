package main

import "testing"

func TestParseDumpFileName(t *testing.T) {
	df, ok := parseDumpFileName("bq_4242_my_queue_1690000000_1920x1080.raw")
	if !ok {
		t.Fatal("expected a match")
	}
	if df.pid != 4242 || df.name != "my_queue" || df.timestampUsec != 1690000000 || df.width != 1920 || df.height != 1080 {
		t.Fatalf("got %+v", df)
	}
}

func TestParseDumpFileNameRejectsOther(t *testing.T) {
	if _, ok := parseDumpFileName("not_a_dump_file.raw"); ok {
		t.Fatal("expected no match")
	}
}
