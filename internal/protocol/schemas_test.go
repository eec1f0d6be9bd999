package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	validate := func(s *jsonschema.Schema, v any) {
		t.Helper()
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	helloSchema := compile("hello.schema.json")
	welcomeSchema := compile("welcome.schema.json")
	resetSchema := compile("reset.schema.json")
	obsSchema := compile("obs.schema.json")
	actSchema := compile("act.schema.json")
	feedbackSchema := compile("feedback.schema.json")
	errorSchema := compile("error.schema.json")

	var hello any
	_ = json.Unmarshal([]byte(`{
	  "type":"HELLO",
	  "protocol_version":"1.0",
	  "agent_name":"bot1"
	}`), &hello)
	validate(helloSchema, hello)

	var welcome any
	_ = json.Unmarshal([]byte(`{
	  "type":"WELCOME",
	  "protocol_version":"1.0",
	  "session_id":"6f1b2c3d",
	  "env_params":{
	    "area":[64,64],
	    "obs_radius":4,
	    "day_length":300,
	    "episode_length":1500,
	    "task_timeout_steps":300,
	    "carry_over_prob":0.5,
	    "seed":1337
	  },
	  "tasks":{
	    "count":199,
	    "dummy_slots":1023,
	    "encoding_width":51,
	    "synonym_digest":"deadbeef",
	    "actions":["noop","move_up","do"]
	  },
	  "palette":{"digest":"deadbeef","count":16}
	}`), &welcome)
	validate(welcomeSchema, welcome)

	var reset any
	_ = json.Unmarshal([]byte(`{
	  "type":"RESET",
	  "protocol_version":"1.0",
	  "mode":"eval"
	}`), &reset)
	validate(resetSchema, reset)

	var obs any
	_ = json.Unmarshal([]byte(`{
	  "type":"OBS",
	  "protocol_version":"1.0",
	  "episode":1,
	  "step":0,
	  "view":{"side":9,"encoding":"RLE","data":"AA=="},
	  "task_enc":[0,1,0,1],
	  "self":{"pos":[32,32],"facing":[0,1],"hp":9,"food":9,"drink":9,"energy":9,"sleeping":false},
	  "inventory":{"wood":2},
	  "reward":0.0,
	  "done":false,
	  "given_achs":{"collect_wood":1},
	  "follow_achs":{}
	}`), &obs)
	validate(obsSchema, obs)

	var act any
	_ = json.Unmarshal([]byte(`{
	  "type":"ACT",
	  "protocol_version":"1.0",
	  "action":"move_up"
	}`), &act)
	validate(actSchema, act)

	var feedback any
	_ = json.Unmarshal([]byte(`{
	  "type":"FEEDBACK",
	  "protocol_version":"1.0",
	  "task_success_rates":[0.0,0.5,1.0]
	}`), &feedback)
	validate(feedbackSchema, feedback)

	var errMsg any
	_ = json.Unmarshal([]byte(`{
	  "type":"ERROR",
	  "protocol_version":"1.0",
	  "code":"E_BAD_ACTION",
	  "message":"unknown action \"fly\""
	}`), &errMsg)
	validate(errorSchema, errMsg)
}
