package app

import (
	"fmt"

	peerHTTP "github.com/allisson/busguard/internal/peer/http"
	peerRepository "github.com/allisson/busguard/internal/peer/repository"
	peerUseCase "github.com/allisson/busguard/internal/peer/usecase"
)

// PeerRepository returns the peer repository based on database driver.
func (c *Container) PeerRepository() (peerUseCase.PeerRepository, error) {
	var err error
	c.peerRepoInit.Do(func() {
		c.peerRepo, err = c.initPeerRepository()
		if err != nil {
			c.initErrors["peerRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["peerRepo"]; exists {
		return nil, storedErr
	}
	return c.peerRepo, nil
}

// PeerUseCase returns the peer use case.
func (c *Container) PeerUseCase() (peerUseCase.PeerUseCase, error) {
	var err error
	c.peerUCInit.Do(func() {
		c.peerUC, err = c.initPeerUseCase()
		if err != nil {
			c.initErrors["peerUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["peerUseCase"]; exists {
		return nil, storedErr
	}
	return c.peerUC, nil
}

// PeerHandler returns the HTTP handler for peer operations.
func (c *Container) PeerHandler() (*peerHTTP.PeerHandler, error) {
	var err error
	c.peerHandlerInit.Do(func() {
		var uc peerUseCase.PeerUseCase
		uc, err = c.PeerUseCase()
		if err != nil {
			c.initErrors["peerHandler"] = err
			return
		}
		c.peerHandler = peerHTTP.NewPeerHandler(uc, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["peerHandler"]; exists {
		return nil, storedErr
	}
	return c.peerHandler, nil
}

// initPeerRepository creates the peer repository instance.
func (c *Container) initPeerRepository() (peerUseCase.PeerRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for peer repository: %w", err)
	}

	// Select the appropriate repository based on the database driver
	switch c.config.DBDriver {
	case "mysql":
		return peerRepository.NewMySQLPeerRepository(db), nil
	case "postgres":
		return peerRepository.NewPostgreSQLPeerRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initPeerUseCase creates the peer use case with all its dependencies.
func (c *Container) initPeerUseCase() (peerUseCase.PeerUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for peer use case: %w", err)
	}

	peerRepo, err := c.PeerRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get peer repository for peer use case: %w", err)
	}

	return peerUseCase.NewPeerUseCase(txManager, peerRepo, c.config.PeerSessionTTL), nil
}
