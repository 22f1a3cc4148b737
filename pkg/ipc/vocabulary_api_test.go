package ipc

import (
	"encoding/json"
	"testing"

	"github.com/scriptorhq/scriptor/pkg/vocabulary"
	"github.com/stretchr/testify/require"
)

func TestVocabularyAPIAddAndGetList(t *testing.T) {
	store := vocabulary.NewStore()
	api := NewVocabularyAPI(store)

	addReq, err := ParseVocabularyRequest(`req1:{"command":"add_term","canonical":"pneumothorax","variations":["new motor ax"],"category":"technical_terms"}`)
	require.NoError(t, err)
	resp := api.Handle(addReq)
	require.Equal(t, okResponse(), resp)

	listReq, err := ParseVocabularyRequest(`req2:{"command":"get_list"}`)
	require.NoError(t, err)
	listResp := api.Handle(listReq)
	m, ok := listResp.(map[string]any)
	require.True(t, ok)
	terms, ok := m["terms"].([]vocabulary.Term)
	require.True(t, ok)
	require.Len(t, terms, 1)
	require.Equal(t, "pneumothorax", terms[0].Canonical)
}

func TestVocabularyAPIUnknownCommandReturnsError(t *testing.T) {
	store := vocabulary.NewStore()
	api := NewVocabularyAPI(store)
	req, err := ParseVocabularyRequest(`req1:{"command":"not_a_command"}`)
	require.NoError(t, err)
	resp := api.Handle(req)
	m := resp.(map[string]any)
	require.False(t, m["ok"].(bool))
}

func TestVocabularyAPILearnCorrectionPromotesOnSecondCall(t *testing.T) {
	store := vocabulary.NewStore()
	api := NewVocabularyAPI(store)
	body := `{"command":"learn_correction","original":"new motor ax","corrected":"pneumothorax"}`

	req, err := ParseVocabularyRequest("r1:" + body)
	require.NoError(t, err)
	first := api.Handle(req).(map[string]any)
	require.True(t, first["recorded"].(bool))
	require.Empty(t, store.Terms())

	req2, err := ParseVocabularyRequest("r2:" + body)
	require.NoError(t, err)
	second := api.Handle(req2).(map[string]any)
	require.True(t, second["ok"].(bool))
	require.Len(t, store.Terms(), 1)
}

func TestParseVocabularyRequestMalformedPayload(t *testing.T) {
	_, err := ParseVocabularyRequest("no-colon-here")
	require.Error(t, err)
}

func TestParseVocabularyRequestMalformedJSON(t *testing.T) {
	_, err := ParseVocabularyRequest("id1:{not json")
	require.Error(t, err)
}

func TestVocabularyRequestKeepsCommandAlongsideRaw(t *testing.T) {
	var raw json.RawMessage = []byte(`{"foo":"bar"}`)
	req := VocabularyRequest{ID: "x", Command: "get_list", Raw: raw}
	require.Equal(t, "get_list", req.Command)
}
