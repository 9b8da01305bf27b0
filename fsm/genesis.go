package fsm

import (
	"os"
	"path/filepath"

	"github.com/canopy-network/ballot/lib"
)

// GenesisState is the deployment file of the contract
type GenesisState struct {
	Administrator lib.Principal `json:"administrator"`
}

// NewFromGenesisFile() deploys the contract from the genesis file and commits the deployment
func (s *StateMachine) NewFromGenesisFile() lib.ErrorI {
	genesis, err := s.ReadGenesisFromFile()
	if err != nil {
		return err
	}
	if err = s.Deploy(genesis.Administrator); err != nil {
		return err
	}
	return s.Commit()
}

// ReadGenesisFromFile() reads a GenesisState object from a file
func (s *StateMachine) ReadGenesisFromFile() (*GenesisState, lib.ErrorI) {
	genesis := new(GenesisState)
	bz, err := os.ReadFile(filepath.Join(s.Config.DataDirPath, lib.GenesisFilePath))
	if err != nil {
		return nil, ErrReadGenesisFile(err)
	}
	if e := lib.UnmarshalJSON(bz, genesis); e != nil {
		return nil, ErrInvalidGenesis(e)
	}
	if e := genesis.Administrator.Check(); e != nil {
		return nil, ErrInvalidGenesis(e)
	}
	return genesis, nil
}

// WriteGenesisFile() saves the genesis file into the data directory
func WriteGenesisFile(dataDirPath string, genesis *GenesisState) lib.ErrorI {
	if err := genesis.Administrator.Check(); err != nil {
		return ErrInvalidGenesis(err)
	}
	return lib.SaveJSONToFile(genesis, dataDirPath, lib.GenesisFilePath)
}

// Deploy() fixes the administrator of the contract
// re-deploying with the same administrator is a no-op; a different administrator is rejected
func (s *StateMachine) Deploy(administrator lib.Principal) lib.ErrorI {
	if err := administrator.Check(); err != nil {
		return err
	}
	ledger, err := s.GetLedger()
	if err != nil {
		return err
	}
	switch ledger.Administrator {
	case administrator:
		return nil
	case "":
		ledger.Administrator = administrator
		s.log.Infof("Deploying contract with administrator %s", administrator)
		return s.SetLedger(ledger)
	default:
		return ErrAlreadyDeployed(ledger.Administrator)
	}
}
