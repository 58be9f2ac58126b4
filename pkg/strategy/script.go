package strategy

import (
	"encoding/json"
	"fmt"
	"os"

	gametypes "github.com/ch1nq/arcadio-go/pkg/game/types"
	"github.com/ch1nq/arcadio-go/pkg/log"
	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// ScriptStrategy runs a decision function loaded from a Go source file
// interpreted at runtime, so bot logic can be changed without
// rebuilding. The script must define
//
//	func TakeAction(stateJSON []byte, playerID int64) string
//
// and return one of the wire action literals or "" for no action. The
// state is passed as JSON so scripts only depend on standard library
// types; the full standard library is available to them.
type ScriptStrategy struct {
	takeAction func(stateJSON []byte, playerID int64) string
}

type NewScriptStrategyOptions struct {
	// Path is the script file to load.
	Path string
}

func NewScriptStrategy(opts NewScriptStrategyOptions) (*ScriptStrategy, error) {
	src, err := os.ReadFile(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %v", err)
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("failed to load stdlib symbols: %v", err)
	}
	if _, err := i.Eval(string(src)); err != nil {
		return nil, fmt.Errorf("failed to evaluate script: %v", err)
	}
	v, err := i.Eval("TakeAction")
	if err != nil {
		return nil, fmt.Errorf("script does not define TakeAction: %v", err)
	}
	takeAction, ok := v.Interface().(func([]byte, int64) string)
	if !ok {
		return nil, fmt.Errorf("script TakeAction has the wrong signature: %T", v.Interface())
	}

	return &ScriptStrategy{
		takeAction: takeAction,
	}, nil
}

func (s *ScriptStrategy) TakeAction(state *gametypes.GameState, playerID gametypes.PlayerID) (gametypes.GameAction, bool) {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		log.Error("Failed to marshal state for script: %v", err)
		return "", false
	}

	action := gametypes.GameAction(s.takeAction(stateJSON, int64(playerID)))
	if action == "" {
		return "", false
	}
	if !action.Valid() {
		log.Warn("Script returned unknown action %q, skipping tick", action)
		return "", false
	}
	return action, true
}
