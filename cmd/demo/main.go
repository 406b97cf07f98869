// Command demo walks a navigator through a scripted session against the mock
// engine and prints every state it publishes. No Chrome is needed.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/barikyo/ciallo/internal/engine"
	"github.com/barikyo/ciallo/internal/engine/mockengine"
	"github.com/barikyo/ciallo/internal/history"
	"github.com/barikyo/ciallo/internal/navigator"
	"github.com/barikyo/ciallo/internal/store/memstore"
)

type step struct {
	label string
	do    func(*navigator.Navigator, *mockengine.MockEngine)
}

func main() {
	fmt.Println("ciallo navigation demo")

	eng := mockengine.New()

	mem := memstore.NewMemoryStore()
	svc := history.NewService(mem, mem)
	defer svc.Close()

	nav := navigator.New(eng, svc)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go nav.Run(ctx)

	steps := []step{
		{"submit example.com", func(n *navigator.Navigator, e *mockengine.MockEngine) {
			n.Submit("example.com")
			e.Emit(engine.SourceChanged{URL: "https://example.com/"})
			e.Emit(engine.TitleChanged{Title: "Example Domain"})
			e.Emit(engine.NavigationCompleted{Completion: engine.Completion{TransportSucceeded: true, HTTPStatus: 200}})
		}},
		{"search for goroutines", func(n *navigator.Navigator, e *mockengine.MockEngine) {
			n.Submit("what is a goroutine")
		}},
		{"server error", func(n *navigator.Navigator, e *mockengine.MockEngine) {
			n.Submit("broken.example")
			e.Emit(engine.SourceChanged{URL: "https://broken.example/"})
			e.Emit(engine.NavigationCompleted{Completion: engine.Completion{TransportSucceeded: true, HTTPStatus: 503}})
		}},
		{"dns failure", func(n *navigator.Navigator, e *mockengine.MockEngine) {
			n.Submit("nowhere.invalid")
			e.Emit(engine.NavigationCompleted{Completion: engine.Completion{TransportErrorCode: "HostNameNotResolved"}})
		}},
		{"home", func(n *navigator.Navigator, e *mockengine.MockEngine) {
			n.Home()
		}},
	}

	updates := nav.Updates()
	for _, s := range steps {
		fmt.Printf("\n> %s\n", s.label)
		s.do(nav, eng)
		printState(settle(updates))
	}

	fmt.Println("\nEngine calls:")
	for i, c := range eng.Calls() {
		switch c.Op {
		case "navigate":
			fmt.Printf("%2d. navigate %s\n", i+1, c.URL)
		case "show":
			fmt.Printf("%2d. show %q\n", i+1, c.Doc.Title)
		default:
			fmt.Printf("%2d. %s\n", i+1, c.Op)
		}
	}

	fmt.Println("\nHistory (newest first):")
	for _, e := range svc.ListRecent(ctx, 10) {
		fmt.Printf("  %s\n", e.String())
	}

	fmt.Printf("\nDemo complete! (Using in-memory store)\n")
}

// settle returns the last state published before the navigator goes quiet.
func settle(updates <-chan navigator.State) navigator.State {
	var last navigator.State
	for {
		select {
		case s, ok := <-updates:
			if !ok {
				log.Fatal("navigator stopped")
			}
			last = s
		case <-time.After(50 * time.Millisecond):
			return last
		}
	}
}

func printState(s navigator.State) {
	fmt.Printf("  view=%s phase=%s\n", s.View, s.Phase)
	fmt.Printf("  address=%s\n", s.Address)
	fmt.Printf("  title=%s\n", navigator.WindowTitle(s.Title))
	if s.View == navigator.ViewFallback {
		fmt.Printf("  outcome=%s\n", s.Outcome)
	}
}
