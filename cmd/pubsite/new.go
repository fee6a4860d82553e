package main

import (
	"fmt"
	"time"

	"github.com/eringen/pubsite/scaffold"
)

func runNew(name string) error {
	data := scaffold.NewData(name, time.Now())

	fmt.Printf("Creating new pubsite project: %s\n\n", data.ProjectName)
	created, err := scaffold.Generate(data.ProjectName, data)
	if err != nil {
		return err
	}
	for _, f := range created {
		fmt.Printf("  created %s/%s\n", data.ProjectName, f)
	}

	fmt.Println()
	fmt.Println("Done! Next steps:")
	fmt.Println()
	fmt.Printf("  cd %s\n", data.ProjectName)
	fmt.Println("  pubsite serve")
	fmt.Println()
	fmt.Println("Posts live in content/posts/ and content/ru/posts/; edit site.yaml to")
	fmt.Println("change locales, navigation and feeds.")
	return nil
}
