package app

import (
	"fmt"

	policyHTTP "github.com/allisson/busguard/internal/policy/http"
	policyRepository "github.com/allisson/busguard/internal/policy/repository"
	policyUseCase "github.com/allisson/busguard/internal/policy/usecase"
)

// PolicyRepository returns the policy repository based on database driver.
func (c *Container) PolicyRepository() (policyUseCase.PolicyRepository, error) {
	var err error
	c.policyRepoInit.Do(func() {
		c.policyRepo, err = c.initPolicyRepository()
		if err != nil {
			c.initErrors["policyRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["policyRepo"]; exists {
		return nil, storedErr
	}
	return c.policyRepo, nil
}

// PolicyUseCase returns the policy use case.
func (c *Container) PolicyUseCase() (policyUseCase.PolicyUseCase, error) {
	var err error
	c.policyUCInit.Do(func() {
		c.policyUC, err = c.initPolicyUseCase()
		if err != nil {
			c.initErrors["policyUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["policyUseCase"]; exists {
		return nil, storedErr
	}
	return c.policyUC, nil
}

// PolicyHandler returns the HTTP handler for policy operations.
func (c *Container) PolicyHandler() (*policyHTTP.PolicyHandler, error) {
	var err error
	c.policyHandlerInit.Do(func() {
		var uc policyUseCase.PolicyUseCase
		uc, err = c.PolicyUseCase()
		if err != nil {
			c.initErrors["policyHandler"] = err
			return
		}
		c.policyHandler = policyHTTP.NewPolicyHandler(uc, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["policyHandler"]; exists {
		return nil, storedErr
	}
	return c.policyHandler, nil
}

// initPolicyRepository creates the policy repository instance.
func (c *Container) initPolicyRepository() (policyUseCase.PolicyRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for policy repository: %w", err)
	}

	// Select the appropriate repository based on the database driver
	switch c.config.DBDriver {
	case "mysql":
		return policyRepository.NewMySQLPolicyRepository(db), nil
	case "postgres":
		return policyRepository.NewPostgreSQLPolicyRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initPolicyUseCase creates the policy use case with all its dependencies.
func (c *Container) initPolicyUseCase() (policyUseCase.PolicyUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for policy use case: %w", err)
	}

	policyRepo, err := c.PolicyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get policy repository for policy use case: %w", err)
	}

	return policyUseCase.NewPolicyUseCase(txManager, policyRepo), nil
}
