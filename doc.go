// Package orange is a conversational-agent runtime: it drives a turn-based
// dialogue between a human caller, a model backend, and a set of callable
// tools, maintaining an append-only transcript and pausing execution whenever
// human input or human approval is required.
//
// A Session wraps the turn engine with a simplified API:
//
//	session, err := orange.New("You are helpful", model,
//		orange.WithTools(tools.ReadFile{}, tools.WriteFile{}),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer session.Close()
//
//	reply, _ := session.Run(ctx, "summarize notes.txt")
//
// Sensitive tool calls suspend the session until the host resolves them:
//
//	if call, pending := session.Pending(); pending {
//		// prompt the human, then:
//		err = session.ResolveConfirmation(ctx, call.ID, approved)
//	}
package orange
