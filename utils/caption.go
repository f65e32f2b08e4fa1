package utils

import (
	"fmt"
	"math/rand"

	"github.com/kryuchenko/kartoshka-bot/model"
)

// metalsAndToxins is the fixed adjective pool for the anonymous prefix.
var metalsAndToxins = []string{
	"Алюминиевой", "Железной", "Медной", "Свинцовой", "Цинковой", "Титановой", "Никелевой",
	"Оксид-железной", "Оксид-цинковой", "Оксид-титановой", "Урановой", "Плутониевой", "Ториевой",
	"Радиевой", "Полониевой", "Актиниевой", "Протактиниевой", "Америциевой", "Кюриевой",
	"Нептуниевой", "Франциевой", "Лоуренсиевой", "Рутениевой", "Цезиевой", "Бериллиевой",
	"Уран-235", "Диоксид-ториевой", "Карбонат-радиевой", "Гексафторид-урановой",
	"Нитрат-ториевой", "Оксид-плутониевой", "Дейтериевой", "Тритиевой", "Цианистой",
	"Рициновой", "Сариновой", "Зомановой", "Ви-Иксной", "Ботулотоксиновой",
	"Стрихнинной", "Фосгеновой", "Диоксиновой", "Тетродоксиновой", "Полониевой-210",
	"Меркуриевой", "Аманитиновой", "Арсеновой", "Талиевой",
	"Метанольной", "Этиленгликолевой", "Трихлорэтиленовой", "Хлориновой",
	"Монооксид-углеродной", "Гексафторовой", "Фторводородной",
	"Бромацетоновой", "Хлорацетоновой", "Карбофосовой", "Хлороформовой", "Барбитуровой",
	"Калий-цианистой", "Метилртутной",
}

// RenderCaption builds the publication caption for a submission projection.
// Attributed submissions get a prefix naming the author; anonymous ones get
// a pseudo-random adjective wrapped in spoiler markup so the reader has to
// tap to reveal it. The result is never empty: with no user text the prefix
// alone is returned.
func RenderCaption(p model.Projection) string {
	var prefix string
	if p.Visibility == model.Attributed {
		prefix = fmt.Sprintf("Мем от <@%s>", p.AuthorID)
	} else {
		adjective := metalsAndToxins[rand.Intn(len(metalsAndToxins))]
		prefix = fmt.Sprintf("||Мем от Анонимной %s Картошки||", adjective)
	}

	if text := p.Payload.DisplayText(); text != "" {
		return fmt.Sprintf("%s\n\n%s", prefix, text)
	}
	return prefix
}

// FormatWait renders an estimated wait as hours and minutes, the way the
// submitter sees it in the approval notification.
func FormatWait(hours, minutes int) string {
	if hours > 0 {
		return fmt.Sprintf("%d ч. %d мин.", hours, minutes)
	}
	return fmt.Sprintf("%d мин.", minutes)
}
