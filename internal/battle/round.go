package battle

import "github.com/peterkuimelis/smtx/internal/log"

// playRound runs one player's uninterrupted sequence of turns.
func (b *Battle) playRound(player int) error {
	b.Round++
	own := b.Teams[player]
	order := ComputeOrder(own)

	b.log(log.NewRoundStartEvent(b.Round, player, own.LeaderName()))
	b.logBoards(player)
	b.metrics.roundPlayed(b.ctx, player)

	if len(order) == 0 {
		b.log(log.NewTurnCountersEvent(b.Round, player, 0, 0))
		return nil
	}

	econ := NewTurnEconomy(len(order))
	cursor := 0
	b.logStatus(player, order, cursor, econ)

	for econ.CanContinue(b.battleOver()) {
		if err := b.ctx.Err(); err != nil {
			return err
		}
		slot, ok := order.NextAlive(own, cursor)
		if !ok {
			break
		}

		effect, err := b.resolveAction(player, slot)
		if err != nil {
			return err
		}

		spent := econ.Apply(effect)
		if spent.Changed() {
			b.log(log.NewTurnsConsumedEvent(b.Round, player,
				spent.FullUsed, spent.BlinkUsed, spent.BlinkGained, effect.Kind.String()))
		}

		if !econ.CanContinue(b.battleOver()) {
			break
		}

		// The cursor walks the original order; it is not re-sorted after deaths.
		cursor = order.Advance(cursor)
		b.log(log.NewTurnEndEvent(b.Round, player))
		b.logBoards(player)
		b.logStatus(player, order, cursor, econ)
	}
	return nil
}

func (b *Battle) logBoards(player int) {
	teams := b.snapshot()
	b.log(log.NewBoardsEvent(b.Round, player, teams[0], teams[1]))
}

func (b *Battle) logStatus(player int, order RoundOrder, cursor int, econ *TurnEconomy) {
	b.log(log.NewTurnCountersEvent(b.Round, player, econ.Full, econ.Blink))
	b.log(log.NewTurnOrderEvent(b.Round, player, order.NamesFrom(b.Teams[player], cursor)))
}
