package command

import (
	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-proposal/proposal"
	"github.com/goliatone/go-proposal/query"
)

// Dependencies groups what the command and query handlers need.
type Dependencies struct {
	Service proposal.Service
	Writer  proposal.DocumentWriter
	Lister  query.Lister
	Warm    *WarmCommand
}

// RegisterHandlers wires proposal commands and queries to go-command.
func RegisterHandlers(reg *gcmd.Registry, deps Dependencies) ([]dispatcher.Subscription, error) {
	if deps.Service == nil {
		return nil, errors.New("proposal service is required", errors.CategoryValidation).
			WithTextCode("SERVICE_REQUIRED")
	}

	warmCmd := deps.Warm
	if warmCmd == nil {
		var loader IDLoader
		if deps.Lister != nil {
			loader = deps.Lister.List
		}
		warmCmd = NewWarmCommand(deps.Service, loader)
	}

	save := NewSaveProposalHandler(deps.Writer)
	warm := NewWarmProposalsHandler(warmCmd)
	get := query.NewGetProposalHandler(deps.Service)
	render := query.NewRenderProposalHandler(deps.Service)
	list := query.NewListProposalsHandler(deps.Lister)

	subscriptions := []dispatcher.Subscription{
		dispatcher.SubscribeCommand(save),
		dispatcher.SubscribeCommand(warm),
		dispatcher.SubscribeQuery(get),
		dispatcher.SubscribeQuery(render),
		dispatcher.SubscribeQuery(list),
	}

	if reg != nil {
		if err := reg.RegisterCommand(warmCmd); err != nil {
			return subscriptions, err
		}
	}

	return subscriptions, nil
}
