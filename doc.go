// Package lingo provides an on-demand translation engine for streams of
// short text messages.
//
// Lingo translates message content into a target language while keeping
// network traffic to a minimum: concurrent requests for the same text are
// deduplicated, backend calls run under admission control, and results are
// cached in a bounded in-process cache plus a durable translation memory
// that survives restarts. Two heterogeneous backends (a credentialed
// primary and a keyless secondary) are selected with configurable fallback.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/daisied/lingo"
//	    "github.com/daisied/lingo/backend"
//	    "github.com/daisied/lingo/store"
//	)
//
//	func main() {
//	    settings := lingo.Settings{
//	        TargetLanguage: "es",
//	        Mode:           lingo.ModePrimaryWithFallback,
//	        PrimaryCredential: os.Getenv("TRANSLATOR_KEY"),
//	    }
//
//	    engine := lingo.New(settings,
//	        lingo.WithBackendFactory(backend.Factory()),
//	        lingo.WithStorage(store.NewFileStorage("/var/lib/lingo")),
//	    )
//	    defer engine.Close(context.Background())
//
//	    state, err := engine.Translate(context.Background(), lingo.Message{
//	        ID:      "m1",
//	        Content: "Hello World",
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(state.Text) // Hola Mundo
//	}
package lingo
