package main

import (
	"encoding/json"
	"log"

	"bufpool/buffer"
)

type demoRecord struct {
	Num int
	Val string
}

func main() {
	bp, err := buffer.NewManager(buffer.Config{PoolSize: 32, DBFile: "demo.db"})
	if err != nil {
		log.Fatal(err)
	}
	defer bp.Close()

	for i := 0; i < 50; i++ {
		rec := demoRecord{Num: i, Val: "selam"}
		encoded, err := json.Marshal(rec)
		if err != nil {
			log.Fatal(err)
		}

		p, err := bp.NewPage()
		if err != nil {
			log.Fatal(err)
		}

		copy(p.Data(), encoded)
		bp.UnpinPage(p.PageID(), true)
	}

	if err := bp.FlushAllPages(); err != nil {
		log.Fatal(err)
	}
}
