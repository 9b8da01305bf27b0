package fsm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/canopy-network/ballot/lib"
	"github.com/canopy-network/ballot/store"
	"github.com/stretchr/testify/require"
)

func TestDeploy(t *testing.T) {
	tests := []struct {
		name   string
		detail string
		admin  lib.Principal
		error  string
	}{
		{
			name:   "same administrator",
			detail: "re-deploying with the same administrator is a no-op",
			admin:  testAdmin,
		},
		{
			name:   "different administrator",
			detail: "the administrator is immutable",
			admin:  testVoter1,
			error:  "already deployed",
		},
		{
			name:   "invalid administrator",
			detail: "the administrator must be a usable principal",
			admin:  " admin",
			error:  "principal is empty or malformed",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			sm := newTestStateMachine(t)
			err := sm.Deploy(test.admin)
			require.Equal(t, test.error != "", err != nil, err)
			if err != nil {
				require.ErrorContains(t, err, test.error)
			}
			ledger, e := sm.GetLedger()
			require.NoError(t, e)
			require.Equal(t, testAdmin, ledger.Administrator)
		})
	}
}

func TestNewFromGenesisFile(t *testing.T) {
	config := lib.Config{StoreConfig: newTestStoreConfig(t)}
	log := lib.NewNullLogger()
	// missing genesis file
	db, err := store.NewStore(config.StoreConfig, log)
	require.NoError(t, err)
	_, err = New(config, db, nil, log)
	require.True(t, lib.IsCode(err, lib.VotingModule, lib.CodeReadGenesisFile), err)
	require.NoError(t, db.Close())
	// deploy from the file
	require.NoError(t, WriteGenesisFile(config.DataDirPath, &GenesisState{Administrator: testAdmin}))
	db, err = store.NewStore(config.StoreConfig, log)
	require.NoError(t, err)
	sm, err := New(config, db, nil, log)
	require.NoError(t, err)
	ledger, err := sm.GetLedger()
	require.NoError(t, err)
	require.Equal(t, testAdmin, ledger.Administrator)
	require.NoError(t, db.Close())
	// the deployment was committed and the file is no longer consulted
	require.NoError(t, os.Remove(filepath.Join(config.DataDirPath, lib.GenesisFilePath)))
	db, err = store.NewStore(config.StoreConfig, log)
	require.NoError(t, err)
	defer db.Close()
	sm, err = New(config, db, nil, log)
	require.NoError(t, err)
	_, err = sm.InitializeVoting(testAdmin, 10)
	require.NoError(t, err)
}

func TestReadGenesisFromFileInvalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, lib.GenesisFilePath), []byte(`{"administrator":""}`), os.ModePerm))
	sm := &StateMachine{Config: lib.Config{StoreConfig: lib.StoreConfig{DataDirPath: dir}}, log: lib.NewNullLogger()}
	_, err := sm.ReadGenesisFromFile()
	require.True(t, lib.IsCode(err, lib.VotingModule, lib.CodeInvalidGenesis), err)
	require.True(t, lib.IsCode(WriteGenesisFile(dir, &GenesisState{}), lib.VotingModule, lib.CodeInvalidGenesis))
}
