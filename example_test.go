package mosaic_test

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/aretw0/mosaic"
	"github.com/aretw0/mosaic/pkg/adapters/memory"
	"github.com/aretw0/mosaic/pkg/domain"
)

// ExampleOpen walks one connection from gesture to commit on the default canvas.
func ExampleOpen() {
	ctx := context.Background()

	canvas, err := mosaic.Open(ctx, "example")
	if err != nil {
		log.Fatal(err)
	}

	// 1. Draw the connection. It stays pending until confirmed.
	if err := canvas.Connect(ctx, "1", "2"); err != nil {
		log.Fatal(err)
	}
	fmt.Println(canvas.Phase(), canvas.Snapshot().Edges[0].ID)

	// 2. Confirm, then describe what to generate.
	if err := canvas.Confirm(ctx); err != nil {
		log.Fatal(err)
	}
	node, err := canvas.Submit(ctx, "merge styles")
	if err != nil {
		log.Fatal(err)
	}

	snap := canvas.Snapshot()
	fmt.Println(snap.Phase, snap.Edges[0].ID)
	fmt.Println(node.Data.Prompt, node.Position.X, node.Position.Y)

	// Output:
	// pending pending-1-2
	// idle confirmed-1-2
	// merge styles 425 150
}

// ExampleCanvas_Connect shows the rejections that leave the canvas untouched.
func ExampleCanvas_Connect() {
	ctx := context.Background()
	canvas, _ := mosaic.Open(ctx, "rejections")

	err := canvas.Connect(ctx, "3", "3")
	fmt.Println(errors.Is(err, domain.ErrSelfLoop))

	_ = canvas.Connect(ctx, "1", "2")
	err = canvas.Connect(ctx, "3", "4")
	fmt.Println(errors.Is(err, domain.ErrConnectionInProgress))
	fmt.Println(canvas.Snapshot().Connection.Source, canvas.Snapshot().Connection.Target)

	// Output:
	// true
	// true
	// 1 2
}

// ExampleWithStore reopens a canvas from the same store.
func ExampleWithStore() {
	ctx := context.Background()
	store := memory.NewStore()

	first, _ := mosaic.Open(ctx, "shared", mosaic.WithStore(store))
	_ = first.RemoveNode(ctx, "4")
	_ = first.Flush(ctx)

	second, _ := mosaic.Open(ctx, "shared", mosaic.WithStore(store))
	fmt.Println(len(second.Snapshot().Nodes))

	// Output:
	// 3
}
