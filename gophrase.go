// Package gophrase rewrites short phrases between a direct, literal
// communication style and a figurative, idiomatic one.
//
// The rewrite itself is done by an AI provider (OpenAI, Anthropic). Results are
// memoized in a persistent phrase cache that also answers reverse lookups: a
// cached translation can be looked up to recover the phrase it came from.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/gophrase"
//	    "github.com/ZaguanLabs/gophrase/cache"
//	    "github.com/ZaguanLabs/gophrase/provider"
//	)
//
//	func main() {
//	    ctx := context.Background()
//
//	    p, err := provider.NewProvider(provider.Config{
//	        Provider: provider.ProviderOpenAI,
//	        APIKey:   os.Getenv("OPENAI_API_KEY"),
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    store := cache.NewStore(ctx, cache.NewFilePersister("cache.json"))
//	    t := gophrase.NewTranslator(p, gophrase.WithCache(store))
//
//	    result, err := t.Translate(ctx, "break a leg", gophrase.DirectionNTToND)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(result.Text) // Good luck with your performance.
//	}
package gophrase
