package main

import "github.com/kryuchenko/kartoshka-bot/bot"

func main() {
	bot.Start()
}
